package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --sqlite
// on both "scraper serve" and "scraper stats").
type Flag struct {
	// Name is the long flag name (e.g. "upstream").
	Name string

	// Shorthand is the one-letter short flag (e.g. "u"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "proxy.upstream").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag registry keys to Flag structs.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddBoolFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen         = "listen"
	FlagUpstream       = "upstream"
	FlagStorageBackend = "storage"
	FlagSQLite         = "sqlite"
	FlagPostgres       = "postgres"
	FlagLogDir         = "log-dir"
	FlagFileLogging    = "file-logging"
	FlagConsoleLogging = "console-logging"
)

// Flags is the default flag registry shared by the scraper commands.
var Flags = FlagSet{
	FlagListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "proxy.listen",
		Description: "address for the proxy to listen on",
	},
	FlagUpstream: {
		Name:        "upstream",
		Shorthand:   "u",
		ViperKey:    "proxy.upstream",
		Description: "upstream API base URL",
	},
	FlagStorageBackend: {
		Name:        "storage",
		ViperKey:    "storage.backend",
		Description: "dedup store backend: memory, sqlite, or postgres",
	},
	FlagSQLite: {
		Name:        "sqlite",
		ViperKey:    "storage.sqlite_path",
		Description: "path to the SQLite database file",
	},
	FlagPostgres: {
		Name:        "postgres",
		ViperKey:    "storage.postgres_url",
		Description: "PostgreSQL connection string",
	},
	FlagLogDir: {
		Name:        "log-dir",
		ViperKey:    "logs.dir",
		Description: "directory for per-session capture files",
	},
	FlagFileLogging: {
		Name:        "file-logging",
		ViperKey:    "logs.file_logging",
		Description: "write per-session capture files",
	},
	FlagConsoleLogging: {
		Name:        "console-logging",
		ViperKey:    "logs.console_logging",
		Description: "write log output to the terminal",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
