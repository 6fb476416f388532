package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"task-tracker/internal/config"
)

func init() {
	zerolog.TimestampFieldName = "timestamp"
}

// NewLogger builds the process logger for env. Local runs get a console
// writer, everything else writes JSON lines to w.
func NewLogger(env string, w io.Writer) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stdout
	}

	level := zerolog.InfoLevel
	switch env {
	case config.EnvProduction:
	case config.EnvDevelopment:
		level = zerolog.DebugLevel
	case config.EnvTest:
		level = zerolog.WarnLevel
	case config.EnvLocal:
		level = zerolog.TraceLevel

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = w
		w = consoleWriter
	default:
		return zerolog.Nop(), fmt.Errorf("unknown environment: %s", env)
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger(), nil
}
