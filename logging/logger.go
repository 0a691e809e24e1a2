package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LineFormatter renders one entry per line with the service name and sorted fields
type LineFormatter struct {
	SystemName string
}

func (f *LineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	b.WriteString(fmt.Sprintf("%s [%s] %s: %s",
		entry.Time.Format("2006-01-02 15:04:05"),
		f.SystemName,
		strings.ToUpper(entry.Level.String()),
		entry.Message))

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(" %s=%v", k, entry.Data[k]))
	}

	if entry.HasCaller() {
		b.WriteString(fmt.Sprintf(" (%s:%d)", filepath.Base(entry.Caller.File), entry.Caller.Line))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Options configures New
type Options struct {
	SystemName string
	Level      string
	// File enables size-based rotation through lumberjack; stdout is used when empty
	File string
}

// New builds the process logger
func New(opts Options) *logrus.Logger {
	logger := logrus.New()

	var out io.Writer = os.Stdout
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
			logrus.Fatalf("Failed to create log directory: %v", err)
		}
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}
	logger.SetOutput(out)

	name := opts.SystemName
	if name == "" {
		name = "bugtracker-api"
	}
	logger.SetFormatter(&LineFormatter{SystemName: name})

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

// Discard returns a logger that writes nowhere, for tests and tools
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
