package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Headers:  nil,
		PollRate: 2000,
		Timeout:  30000, // 30 seconds
		Port:     0,     // HTTP default
		History:  "",
		EnvFile:  "",
		Output:   "console",
		Verbose:  BoolPtr(false),
		NoColor:  BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return len(c.Headers) == 0 &&
		c.PollRate == defaults.PollRate &&
		c.Timeout == defaults.Timeout &&
		c.Port == defaults.Port &&
		c.History == defaults.History &&
		c.EnvFile == defaults.EnvFile &&
		c.Output == defaults.Output &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor()
}
