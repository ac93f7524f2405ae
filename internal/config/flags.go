package config

import (
	flag "github.com/spf13/pflag"
)

// Flags are the global command line overrides
type Flags struct {
	ConfigFile string

	fs          *flag.FlagSet
	dbPath      string
	exportDir   string
	logFile     string
	logLevel    string
	logFormat   string
	dueSoonDays int
}

// AddFlags registers the config flags on fs
func AddFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVarP(&f.ConfigFile, "config", "c", "", "Use specified config file")
	fs.StringVar(&f.dbPath, "db", "", "Database file")
	fs.StringVar(&f.exportDir, "export-dir", "", "Directory for exported boards")
	fs.StringVar(&f.logFile, "log-file", "", "Log file")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format (json, text)")
	fs.IntVar(&f.dueSoonDays, "due-soon-days", 0, "Days ahead that count as due soon")
	return f
}

// Apply copies every flag that was set on the command line into cfg
func (f *Flags) Apply(cfg *Config) {
	if f.fs.Changed("db") {
		cfg.DBPath = f.dbPath
	}
	if f.fs.Changed("export-dir") {
		cfg.ExportDir = f.exportDir
	}
	if f.fs.Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if f.fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if f.fs.Changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if f.fs.Changed("due-soon-days") {
		cfg.DueSoonDays = f.dueSoonDays
	}
	cfg.finalize()
}
