package config

// DefaultConfig returns the settings used for anything a graph file leaves
// out.
func DefaultConfig() *Config {
	enabled := true
	return &Config{
		Run: RunConfig{
			Steps: 1,
		},
		Trace: TraceConfig{
			Enabled: &enabled,
			Store:   "memory",
			DBPath:  "regionnet.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}
