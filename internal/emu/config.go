package emu

import "time"

// Config contains settings that affect a headless run.
type Config struct {
	Trace       bool          // report retired instructions to attached tracers
	TraceWindow int           // instructions kept for the failure dump; 0 disables
	MaxSteps    int           // instruction limit for Run
	StartPC     uint16        // entry point when starting without a boot ROM
	UntilSerial string        // stop once serial output contains this, case-insensitive
	AutoVerdict bool          // detect "Passed" / "Failed N tests" in serial output
	Timeout     time.Duration // wall-clock limit for Run; 0 disables

	SerialWindow int // recent serial bytes kept for diagnostics
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.MaxSteps <= 0 {
		c.MaxSteps = 5_000_000
	}
	if c.StartPC == 0 {
		c.StartPC = 0x0100
	}
	if c.TraceWindow < 0 {
		c.TraceWindow = 0
	}
	if c.SerialWindow <= 0 {
		c.SerialWindow = 8192
	}
	if c.Timeout < 0 {
		c.Timeout = 0
	}
}
