package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component derives a sub-logger of the global logger tagged with the
// component name. Services built with an explicit logger use the same key.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
