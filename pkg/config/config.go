package config

import "flag"

type CaptureConfig struct {
	Capture    Capture
	Monitoring Monitoring
}

// Capture holds the stream parameters and the sensor bus timing
// inputs, all loaded before device attach.
type Capture struct {
	Debug     bool
	Device    string `fig:"device" default:"at91sam9g45-isi"`
	Width     uint32 `fig:"width" default:"640"`
	Height    uint32 `fig:"height" default:"480"`
	Format    string `fig:"format" default:"YUYV"`
	Buffers   int    `fig:"buffers" default:"32"`
	Triggered bool
	Bus       Bus
}

// Bus describes the parallel sensor bus wiring.
type Bus struct {
	HsyncActiveLow    bool
	VsyncActiveLow    bool
	PclkSampleFalling bool
	EmbSync           bool
	FullMode          bool   `fig:"full_mode" default:"true"`
	FrateDiv          uint32 `fig:"frate_div"`
	DataWidth         int    `fig:"data_width" default:"8"`
}

type Monitoring struct {
	Port             int
	URLPrefix        string `fig:"url_prefix"`
	ProfilingEnabled bool
	MetricEnabled    bool `fig:"metric_enabled" default:"true"`
}

// allows custom config path
var captureConfigPath string

func NewCaptureConfig() (conf CaptureConfig) {
	if err := LoadConfig(&conf, captureConfigPath); err != nil {
		panic(err)
	}
	return
}

// WithFlags defines runtime flags overriding config values, with the
// defaults set to the current config params.
// Don't forget to call flag.Parse().
func (c *CaptureConfig) WithFlags() {
	flag.StringVar(&c.Capture.Device, "device", c.Capture.Device, "Capture device identity")
	flag.BoolVar(&c.Capture.Triggered, "triggered", c.Capture.Triggered, "One-shot triggered mode")
	flag.IntVar(&c.Monitoring.Port, "monitoring.port", c.Monitoring.Port, "Monitoring server port")
	flag.StringVar(&captureConfigPath, "conf", captureConfigPath, "Set custom configuration file path")
}
