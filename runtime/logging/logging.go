// Package logging configures the logrus output format for the command line tools and
// optionally mirrors every log entry into a file.
package logging

import (
	"fmt"
	"io"
	"os"

	joonix "github.com/joonix/log"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

const timestampFormat = "2006-01-02 15:04:05"

var _ = logrus.Hook(&WriterHook{})

// WriterHook is a hook that writes logs of specified LogLevels to specified Writer.
type WriterHook struct {
	LogLevels []logrus.Level
	Formatter logrus.Formatter
	Writer    io.Writer
}

// Fire will be called when some logging function is called with current hook.
// It formats the entry with the hook's own formatter and writes it.
func (hook *WriterHook) Fire(entry *logrus.Entry) error {
	line, err := hook.Formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = hook.Writer.Write(line)
	return err
}

// Levels defines on which log levels this hook would trigger.
func (hook *WriterHook) Levels() []logrus.Level {
	return hook.LogLevels
}

// Formatter returns the logrus formatter for a format name: text, fluentd or json.
func Formatter(format string, disableColors bool) (logrus.Formatter, error) {
	switch format {
	case "text":
		formatter := new(prefixed.TextFormatter)
		formatter.TimestampFormat = timestampFormat
		formatter.FullTimestamp = true
		// Colors are ANSI codes and seen as gibberish in log files.
		formatter.DisableColors = disableColors
		return formatter, nil
	case "fluentd":
		return joonix.NewFormatter(), nil
	case "json":
		return &logrus.JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown log format %s", format)
	}
}

// Configure sets the level and the formatter of the standard logger. When logFileName
// is set, colors are disabled and entries are also appended to that file.
func Configure(verbosity, format, logFileName string) error {
	level, err := logrus.ParseLevel(verbosity)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	formatter, err := Formatter(format, logFileName != "")
	if err != nil {
		return err
	}
	logrus.SetFormatter(formatter)
	if logFileName == "" {
		return nil
	}
	return ConfigurePersistentLogging(logFileName, format)
}

// ConfigurePersistentLogging adds a log-to-file writer hook to the logrus logger. The writer hook appends new
// logs to the specified log file.
func ConfigurePersistentLogging(logFileName, logFileFormatName string) error {
	logrus.WithField("logFileName", logFileName).Info("Logs will be made persistent")
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return err
	}
	formatter, err := Formatter(logFileFormatName, true)
	if err != nil {
		if cerr := f.Close(); cerr != nil {
			logrus.WithError(cerr).Error("Could not close log file")
		}
		return err
	}
	logrus.AddHook(&WriterHook{
		LogLevels: logrus.AllLevels,
		Formatter: formatter,
		Writer:    f,
	})
	logrus.Info("File logger initialized")
	return nil
}
