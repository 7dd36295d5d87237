// Package log implements a colorful logrus formatter for the arbor tools.
package log

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

var showPid = os.Getenv("ARBOR_LOG_SHOW_PID") != ""

// FancyLogFormatter prints one line per entry: timestamp, level symbol,
// optional caller position, message and fields.
type FancyLogFormatter struct {
	UseColors  bool
	ShowCaller bool
}

var symbolTable = map[logrus.Level]string{
	logrus.TraceLevel: "·",
	logrus.DebugLevel: "⚙",
	logrus.InfoLevel:  "⚐",
	logrus.WarnLevel:  "⚠",
	logrus.ErrorLevel: "⚡",
	logrus.FatalLevel: "☣",
	logrus.PanicLevel: "☠",
}

var colorTable = map[logrus.Level]*color.Color{
	logrus.TraceLevel: color.New(color.FgBlue),
	logrus.DebugLevel: color.New(color.FgCyan),
	logrus.InfoLevel:  color.New(color.FgGreen),
	logrus.WarnLevel:  color.New(color.FgYellow),
	logrus.ErrorLevel: color.New(color.FgRed),
	logrus.FatalLevel: color.New(color.FgMagenta),
	logrus.PanicLevel: color.New(color.FgMagenta),
}

func init() {
	// color.NoColor is a global decision based on stdout; the formatter
	// decides on its own via UseColors.
	for _, c := range colorTable {
		c.EnableColor()
	}
}

func colorByLevel(level logrus.Level, msg string) string {
	c, ok := colorTable[level]
	if !ok {
		return msg
	}

	return c.Sprint(msg)
}

func formatColored(useColors bool, buffer *bytes.Buffer, msg string, level logrus.Level) {
	if useColors {
		buffer.WriteString(colorByLevel(level, msg))
	} else {
		buffer.WriteString(msg)
	}
}

func formatTimestamp(builder *strings.Builder, t time.Time) {
	fmt.Fprintf(builder, "%02d.%02d.%04d", t.Day(), t.Month(), t.Year())
	builder.WriteByte('/')
	fmt.Fprintf(builder, "%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func formatFields(useColors bool, buffer *bytes.Buffer, entry *logrus.Entry) {
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	buffer.WriteString(" [")

	for idx, key := range keys {
		formatColored(useColors, buffer, key, entry.Level)
		buffer.WriteByte('=')

		switch v := entry.Data[key].(type) {
		case error:
			formatColored(useColors, buffer, v.Error(), logrus.ErrorLevel)
		default:
			buffer.WriteString(fmt.Sprintf("%v", v))
		}

		if idx != len(keys)-1 {
			buffer.WriteByte(' ')
		}
	}

	buffer.WriteByte(']')
}

const logrusPkg = "github.com/sirupsen/logrus."

// callerOf returns the position of the first frame after the logrus
// frames, that is the code that emitted the log entry.
func callerOf() (string, int, bool) {
	pcs := make([]uintptr, 32)
	frames := runtime.CallersFrames(pcs[:runtime.Callers(3, pcs)])

	insideLogrus := false
	for {
		frame, more := frames.Next()
		isLogrus := strings.HasPrefix(frame.Function, logrusPkg)

		if insideLogrus && !isLogrus {
			return shortPath(frame.File), frame.Line, true
		}

		insideLogrus = insideLogrus || isLogrus
		if !more {
			return "", 0, false
		}
	}
}

// shortPath strips everything up to the module directory.
func shortPath(path string) string {
	if idx := strings.LastIndex(path, "arbor/"); idx >= 0 {
		return path[idx+len("arbor/"):]
	}

	return filepath.Base(path)
}

// Format logs a single entry according to our formatting ideas.
func (flf *FancyLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	prefixBuilder := strings.Builder{}
	formatTimestamp(&prefixBuilder, entry.Time)
	prefixBuilder.WriteByte(' ')
	prefixBuilder.WriteString(symbolTable[entry.Level])

	buffer := &bytes.Buffer{}
	formatColored(flf.UseColors, buffer, prefixBuilder.String(), entry.Level)

	if showPid {
		// Helps to tell apart several processes logging to the same terminal.
		buffer.WriteString(fmt.Sprintf(" [%d]", os.Getpid()))
	}

	if flf.ShowCaller {
		if file, line, ok := callerOf(); ok {
			buffer.WriteString(fmt.Sprintf(" %s:%d:", file, line))
		}
	}

	buffer.WriteByte(' ')
	buffer.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		formatFields(flf.UseColors, buffer, entry)
	}

	buffer.WriteByte('\n')
	return buffer.Bytes(), nil
}

// Writer is an io.Writer that writes everything to logrus.
type Writer struct {
	// Level determines the severity for all messages.
	Level logrus.Level
}

func (l *Writer) Write(buf []byte) (int, error) {
	msg := strings.Trim(string(buf), "\n\r ")
	if msg == "" {
		return len(buf), nil
	}

	logrus.StandardLogger().Log(l.Level, msg)
	return len(buf), nil
}
