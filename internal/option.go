package internal

// Option configures the serve-mode application before Run starts the
// catalog, watcher, and HTTP server.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig supplies the loaded grafty configuration. Run fails
// without one; there is no implicit default lookup at this layer.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
