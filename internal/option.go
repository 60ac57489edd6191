package internal

import "log/slog"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	logger *slog.Logger
	debug  bool
	root   string
	// level is the effective log level: config log_level, or debug when forced.
	level slog.Level
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the JSON stdout logger the entry points would otherwise install.
func WithLogger(logger *slog.Logger) Option {
	return func(a *application) {
		a.logger = logger
	}
}

// WithDebug forces debug-level logging.
func WithDebug(debug bool) Option {
	return func(a *application) {
		a.debug = debug
	}
}

// WithRoot sets the directory served by Serve, overriding build.output_dir.
func WithRoot(dir string) Option {
	return func(a *application) {
		a.root = dir
	}
}
