package hw

// Register map of the newer controller (sama5d2-isc).
const (
	iscCtrlEnReg  = 0x00
	iscCtrlDisReg = 0x04
	iscCtrlSr     = 0x08
	iscPfeCfg0    = 0x0c
	iscClkEn      = 0x18
	iscClkDis     = 0x1c
	iscClkSr      = 0x20
	iscClkCfg     = 0x24
	iscIntEn      = 0x28
	iscIntDis     = 0x2c
	iscIntMask    = 0x30
	iscIntSr      = 0x34
	iscCfaCtrl    = 0x70
	iscCfaCfg     = 0x74
	iscGamCtrl    = 0x94
	iscRlpCfg     = 0x3d0
	iscDCfg       = 0x3e0
	iscDCtrl      = 0x3e4
	iscDnda       = 0x3e8
	iscDad0       = 0x3ec
)

// Control enable/disable/status bits.
const (
	iscCtrlEnCapture  = 1 << 0
	iscCtrlDisCapture = 1 << 0
	iscCtrlDisSwrst   = 1 << 8
	iscCtrlSrCapture  = 1 << 0
)

// Interrupt bits.
const (
	iscIntSwrstComplete   = 1 << 4
	iscIntDisableComplete = 1 << 5
	iscIntDmaDone         = 1 << 8
)

// Parallel front end configuration.
const (
	iscPfeHsyncActiveLow     = 1 << 2
	iscPfeVsyncActiveLow     = 1 << 3
	iscPfePixClkFallingEdge  = 1 << 4
	iscPfeModeProgressive    = 0 << 8
	iscPfeContVideo          = 1 << 7
	iscPfeBps8Bit            = 0 << 28
)

// Clock configuration.
const (
	iscClkMaster            = 1 << 0
	iscClkIsp               = 1 << 1
	iscClkSip               = 1 << 31
	iscClkCfgMcdivMask      = 0xff << 0
	iscClkCfgMasterHclock   = 0 << 8
	iscClkCfgIcdivMask      = 0xff << 16
	iscClkCfgIspSelHclock   = 0 << 24
)

func iscClkCfgMcdiv(div uint32) uint32 { return div & iscClkCfgMcdivMask }
func iscClkCfgIcdiv(div uint32) uint32 { return (div << 16) & iscClkCfgIcdivMask }

// Rounding/lookup/DMA output configuration.
const (
	iscRlpCfgModeDat8   = 0x0
	iscRlpCfgModeRgb565 = 0xd
	iscDCfgPacked8      = 0x0
	iscDCfgPacked16     = 0x1
)

// DMA view control bits.
const (
	iscDCtrlDescEnable       = 1 << 0
	iscDCtrlDviewPacked      = 0 << 1
	iscDCtrlDmaDoneIntEnable = 1 << 4
	iscDCtrlWriteBackEnable  = 1 << 5
)

// CFA demosaicing.
const (
	iscCfaCtrlEnable  = 1 << 0
	iscCfaCfgBggr     = 3
	iscCfaCfgEdge     = 1 << 4
	iscGamCtrlEnable  = 1 << 0
	iscGamCtrlAllChan = 0xe
)
