// Package assertions holds the checks shared by the assert and require packages.
package assertions

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus/hooks/test"
)

// AssertionTestingTB is the subset of testing.TB the assertion packages use.
type AssertionTestingTB interface {
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	FailNow()
	Helper()
}

type assertionLoggerFn func(string, ...interface{})

// ErrorContains reports when err is nil or its message does not contain want.
func ErrorContains(loggerFn assertionLoggerFn, want string, err error, msg ...interface{}) {
	if err == nil {
		loggerFn("Expected error containing %q, got nil%s", want, parseMsg(msg...))
		return
	}
	if !strings.Contains(err.Error(), want) {
		loggerFn("Expected error containing %q, got %q%s", want, err.Error(), parseMsg(msg...))
	}
}

// LogsContain checks whether any entry captured by hook contains want. With flag set
// the entry must be present, otherwise it must be absent.
func LogsContain(loggerFn assertionLoggerFn, hook *test.Hook, want string, flag bool, msg ...interface{}) {
	entries := hook.AllEntries()
	var logs []string
	match := false
	for _, e := range entries {
		line, err := e.String()
		if err != nil {
			loggerFn("Failed to format log entry to string: %v", err)
			return
		}
		if strings.Contains(line, want) {
			match = true
		}
		logs = append(logs, line)
	}
	if flag && !match {
		loggerFn("Expected log not found: %q\nSearched logs:\n%s%s", want, strings.Join(logs, ""), parseMsg(msg...))
	} else if !flag && match {
		loggerFn("Unexpected log found: %q%s", want, parseMsg(msg...))
	}
}

func parseMsg(msg ...interface{}) string {
	if len(msg) == 0 {
		return ""
	}
	if format, ok := msg[0].(string); ok && len(msg) > 1 {
		return ": " + fmt.Sprintf(format, msg[1:]...)
	}
	return ": " + fmt.Sprint(msg...)
}
