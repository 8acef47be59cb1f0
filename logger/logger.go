// Package logger configures the process-wide zerolog logger from flags or
// environment variables.
package logger

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger holds logging options, embeddable in a go-flags option struct.
type Logger struct {
	Level string `short:"L" long:"log-level" env:"LOG_LEVEL" description:"Log level" default:"info" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error"`
	JSON  bool   `long:"log-json" env:"LOG_JSON" description:"Log in JSON instead of console format"`
}

// Setup applies the options to the global logger.
func (l *Logger) Setup() {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !l.JSON {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
