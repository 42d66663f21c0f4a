package watchparty

import "github.com/rs/zerolog"

// zerologLogger adapts a zerolog.Logger to the SDK Logger interface.
type zerologLogger struct {
	l zerolog.Logger
}

// NewZerologLogger returns a Logger backed by the given zerolog.Logger.
func NewZerologLogger(l zerolog.Logger) Logger {
	return zerologLogger{l: l}
}

func (z zerologLogger) Debug(msg string, fields map[string]any) { emit(z.l.Debug(), msg, fields) }
func (z zerologLogger) Info(msg string, fields map[string]any)  { emit(z.l.Info(), msg, fields) }
func (z zerologLogger) Warn(msg string, fields map[string]any)  { emit(z.l.Warn(), msg, fields) }
func (z zerologLogger) Error(msg string, fields map[string]any) { emit(z.l.Error(), msg, fields) }

func emit(ev *zerolog.Event, msg string, fields map[string]any) {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
