package binlog

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Options are the schema filters handed to the decoder.
//
// They are accepted for compatibility with callers that pass them, but no
// event kind applies them yet.
type Options struct {
	OnlySchemas  []string `env:"BINLOG_ONLY_SCHEMAS" envSeparator:","`
	OnlyTables   []string `env:"BINLOG_ONLY_TABLES" envSeparator:","`
	FreezeSchema bool     `env:"BINLOG_FREEZE_SCHEMA"`
}

// ParseOptions reads Options from the environment.
func ParseOptions() (Options, error) {
	var opts Options
	if err := env.Parse(&opts); err != nil {
		return Options{}, fmt.Errorf("failed to parse binlog options: %w", err)
	}
	return opts, nil
}
