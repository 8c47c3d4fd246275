// Package ports defines the interfaces between the schedule core and its collaborators.
package ports

// LogLevel is the severity of a log message.
type LogLevel int

const (
	// LevelDebug covers component internals such as layout and view updates.
	LevelDebug LogLevel = iota
	// LevelInfo covers host progress: loads, renders, reloads.
	LevelInfo
	// LevelWarn covers ignored input and fallbacks.
	LevelWarn
	// LevelError covers failed operations.
	LevelError
	// LevelQuiet suppresses all output.
	LevelQuiet
)

var levelNames = []string{"debug", "info", "warn", "error", "quiet"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// ParseLogLevel parses a level name. Unknown names mean LevelInfo.
func ParseLogLevel(s string) LogLevel {
	for i, name := range levelNames {
		if name == s {
			return LogLevel(i)
		}
	}
	return LevelInfo
}

// Logger takes printf-style messages whose format string doubles as the
// translation key.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger prefixing messages with component.
	WithComponent(component string) Logger
}
