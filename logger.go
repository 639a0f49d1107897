package rendersec

// Logger receives sandbox diagnostics: denials (err is a [*DeniedError]) and
// displacement (err is [ErrDisplaced]). It never influences a verdict.
//
// Adapters for zap, slog and prometheus live in the logging package.
type Logger interface {
	Warn(msg string, err error)
}

type nopLogger struct{}

func (nopLogger) Warn(string, error) {}

type loggerBox struct {
	Logger
}
