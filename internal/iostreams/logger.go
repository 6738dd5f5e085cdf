package iostreams

import "github.com/rs/zerolog"

// Logger provides diagnostic logging for the command layer and the sync core.
// *zerolog.Logger and *logger.Logger satisfy this interface directly.
// Tests use loggertest.New() or loggertest.NewNop().
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
}
