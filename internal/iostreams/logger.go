package iostreams

import "github.com/rs/zerolog"

// Logger is the logging surface components depend on.
// *zerolog.Logger satisfies it directly. Production wires logger.Global;
// tests use loggertest.New() or loggertest.NewNop().
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
}
