package hw

// Register map of the legacy interface (at91sam9g45-isi).
const (
	isiCfg1     = 0x00
	isiCfg2     = 0x04
	isiPsize    = 0x08
	isiPdecf    = 0x0c
	isiCtrl     = 0x24
	isiStatus   = 0x28
	isiInten    = 0x2c
	isiIntdis   = 0x30
	isiIntmask  = 0x34
	isiDmaCher  = 0x38
	isiDmaChdr  = 0x3c
	isiDmaChsr  = 0x40
	isiDmaCAddr = 0x44
	isiDmaCCtrl = 0x48
	isiDmaCDscr = 0x4c
	isiDmaPAddr = 0x50
	isiDmaPCtrl = 0x54
	isiDmaPDscr = 0x58
)

// Control register bits. The same bits show up in the status register
// as reset/disable acknowledgements.
const (
	isiCtrlEn   = 1 << 0
	isiCtrlDis  = 1 << 1
	isiCtrlSrst = 1 << 2
	isiCtrlCdc  = 1 << 8
)

// Status register bits.
const (
	isiSrCxfrDone = 1 << 16
	isiSrPxfrDone = 1 << 17
)

// CFG1 bits.
const (
	isiCfg1HsyncPolActiveLow    = 1 << 2
	isiCfg1VsyncPolActiveLow    = 1 << 3
	isiCfg1PixclkPolActiveFall  = 1 << 4
	isiCfg1EmbSync              = 1 << 6
	isiCfg1FrateDivMask         = 7 << 8
	isiCfg1Discr                = 1 << 11
	isiCfg1FullMode             = 1 << 12
	isiCfg1ThmaskBeats16        = 2 << 13
)

// CFG2 bits and fields.
const (
	isiCfg2IMVsizeOffset  = 0
	isiCfg2IMVsizeMask    = 0x7ff << isiCfg2IMVsizeOffset
	isiCfg2Grayscale      = 1 << 12
	isiCfg2ColSpaceYCbCr  = 0 << 15
	isiCfg2IMHsizeOffset  = 16
	isiCfg2IMHsizeMask    = 0x7ff << isiCfg2IMHsizeOffset
	isiCfg2YccSwapDefault = 0 << 28
	isiCfg2YccSwapMode1   = 1 << 28
	isiCfg2YccSwapMode2   = 2 << 28
	isiCfg2YccSwapMode3   = 3 << 28
)

// Preview size fields.
const (
	isiPsizePrevVsizeOffset = 0
	isiPsizePrevVsizeMask   = 0x3ff << isiPsizePrevVsizeOffset
	isiPsizePrevHsizeOffset = 16
	isiPsizePrevHsizeMask   = 0x3ff << isiPsizePrevHsizeOffset
	isiPdecfNoSampling      = 0x10
)

// DMA channel control bits.
const (
	isiDmaCtrlFetch = 1 << 0
	isiDmaCtrlWB    = 1 << 1
	isiDmaCtrlDone  = 1 << 3
	isiDmaChsrCCh   = 1 << 0
	isiDmaChsrPCh   = 1 << 1
)
