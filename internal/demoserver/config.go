package demoserver

// Config holds configuration for the demo server.
type Config struct {
	// Port is the port on which the demo server listens.
	Port int

	// Cloaked is the initial cloaking switch for every page. When a page is
	// cloaked, search engine crawlers get its injected variant.
	Cloaked bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:    9999,
		Cloaked: true,
	}
}
