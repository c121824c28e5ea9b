package logsvc

import (
	"fmt"
	"io"
	"strings"

	"github.com/labstack/gommon/log"

	"github.com/DeivFF/study-space-wire-57-sub000/core"
)

const header = `${time_rfc3339} ${level} ${prefix}`

// ConsoleLogger writes leveled lines to an io.Writer.
type ConsoleLogger struct {
	log *log.Logger
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(out io.Writer, prefix, level string) *ConsoleLogger {
	l := log.New(prefix)
	l.SetOutput(out)
	l.SetHeader(header)
	l.SetLevel(ParseLevel(level))
	return &ConsoleLogger{log: l}
}

// ParseLevel maps debug|info|warn|error|off to a log level, defaulting to info.
func ParseLevel(level string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// line joins msg and args; errors are printed with their stack when they carry one.
func line(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			_, _ = fmt.Fprintf(&b, " | %+v", a)
		case map[string]interface{}:
			for k, v := range a {
				_, _ = fmt.Fprintf(&b, " %s=%v", k, v)
			}
		default:
			_, _ = fmt.Fprintf(&b, " %v", a)
		}
	}
	return b.String()
}

func (l ConsoleLogger) Debug(msg string, args ...interface{}) { l.log.Debug(line(msg, args)) }
func (l ConsoleLogger) Info(msg string, args ...interface{})  { l.log.Info(line(msg, args)) }
func (l ConsoleLogger) Warn(msg string, args ...interface{})  { l.log.Warn(line(msg, args)) }
func (l ConsoleLogger) Error(msg string, args ...interface{}) { l.log.Error(line(msg, args)) }
func (l ConsoleLogger) Fatal(msg string, args ...interface{}) { l.log.Fatal(line(msg, args)) }
