package config

import "github.com/spf13/pflag"

// Flags holds command-line overrides. Register binds them to a flag set;
// only flags the user actually set override file values.
type Flags struct {
	ConfigPath  string
	Debug       bool
	LogFile     string
	Concurrency int
	Compression int
	Strict      bool

	fs *pflag.FlagSet
}

// Register adds the flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	f.fs = fs
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "Also write logs to this file")
	fs.IntVar(&f.Concurrency, "concurrency", 0, "Model parts decoded in parallel (0 = all CPUs)")
	fs.IntVar(&f.Compression, "compression", 6, "Deflate level for written packages (0 stores)")
	fs.BoolVar(&f.Strict, "strict", false, "Reject models requiring unsupported extensions")
}

func (f *Flags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.changed("log-file") {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.changed("concurrency") {
		cfg.Loader.Concurrency = f.Concurrency
	}
	if f.changed("compression") {
		cfg.Writer.CompressionLevel = f.Compression
	}
	if f.changed("strict") {
		cfg.Loader.StrictExtensions = f.Strict
	}
}
