// Package config declares the flag-driven configuration cmd/shimctl runs
// with.
package config

import "flag"

// Config holds the settings cmd/shimctl needs to stand up a shim surface
// against either the loopback test double or (in a future build with a
// real transport) a remote execution daemon.
type Config struct {
	RemoteAddr string
	ChannelID  int
	LogLevel   string
	Loopback   bool
	DumpDir    string
	ReplayLog  string
}

// Default returns the configuration cmd/shimctl uses when no flags are
// given.
func Default() Config {
	return Config{
		RemoteAddr: "127.0.0.1:9999",
		ChannelID:  0,
		LogLevel:   "info",
		Loopback:   true,
	}
}

// RegisterFlags binds fs's flags to cfg's fields, so cfg holds the parsed
// values once the caller has run fs.Parse.
func RegisterFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.RemoteAddr, "remote-addr", cfg.RemoteAddr, "address of the remote execution daemon")
	fs.IntVar(&cfg.ChannelID, "channel", cfg.ChannelID, "transport channel id (not read by shimctl: the shim surface always drives channel 0)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error (not read by shimctl: every message is logged)")
	fs.BoolVar(&cfg.Loopback, "loopback", cfg.Loopback, "use the in-process loopback transport instead of a real remote")
	fs.StringVar(&cfg.DumpDir, "dump-dir", cfg.DumpDir, "if set, write a zstd-compressed dump of every registered fat binary here")
	fs.StringVar(&cfg.ReplayLog, "replay-log", cfg.ReplayLog, "if set, persist a bbolt-backed log of every marshalled request here")
}
