// Package require wraps testify's require checks with the log and error helpers used across the
// tests of this module. Failures stop the test.
package require

import (
	"time"

	"github.com/prysmaticlabs/ghost/testing/assertions"
	"github.com/sirupsen/logrus/hooks/test"
	trequire "github.com/stretchr/testify/require"
)

// Equal compares values with ObjectsAreEqual.
func Equal(tb assertions.AssertionTestingTB, expected, actual interface{}, msg ...interface{}) {
	tb.Helper()
	trequire.Equal(tb, expected, actual, msg...)
}

// NotEqual is the inverse of Equal.
func NotEqual(tb assertions.AssertionTestingTB, expected, actual interface{}, msg ...interface{}) {
	tb.Helper()
	trequire.NotEqual(tb, expected, actual, msg...)
}

// EqualValues compares values after converting actual to the type of expected.
func EqualValues(tb assertions.AssertionTestingTB, expected, actual interface{}, msg ...interface{}) {
	tb.Helper()
	trequire.EqualValues(tb, expected, actual, msg...)
}

// DeepEqual compares values using reflect.DeepEqual semantics.
func DeepEqual(tb assertions.AssertionTestingTB, expected, actual interface{}, msg ...interface{}) {
	tb.Helper()
	trequire.Equal(tb, expected, actual, msg...)
}

// Same asserts that both pointers reference the same object.
func Same(tb assertions.AssertionTestingTB, expected, actual interface{}, msg ...interface{}) {
	tb.Helper()
	trequire.Same(tb, expected, actual, msg...)
}

// True asserts that value is true.
func True(tb assertions.AssertionTestingTB, value bool, msg ...interface{}) {
	tb.Helper()
	trequire.True(tb, value, msg...)
}

// False asserts that value is false.
func False(tb assertions.AssertionTestingTB, value bool, msg ...interface{}) {
	tb.Helper()
	trequire.False(tb, value, msg...)
}

// NoError asserts that error is nil.
func NoError(tb assertions.AssertionTestingTB, err error, msg ...interface{}) {
	tb.Helper()
	trequire.NoError(tb, err, msg...)
}

// Error asserts that error is not nil.
func Error(tb assertions.AssertionTestingTB, err error, msg ...interface{}) {
	tb.Helper()
	trequire.Error(tb, err, msg...)
}

// ErrorIs asserts that target is in err's chain.
func ErrorIs(tb assertions.AssertionTestingTB, err, target error, msg ...interface{}) {
	tb.Helper()
	trequire.ErrorIs(tb, err, target, msg...)
}

// NotErrorIs asserts that target is not in err's chain.
func NotErrorIs(tb assertions.AssertionTestingTB, err, target error, msg ...interface{}) {
	tb.Helper()
	trequire.NotErrorIs(tb, err, target, msg...)
}

// ErrorContains asserts that actual error contains wanted message.
func ErrorContains(tb assertions.AssertionTestingTB, want string, err error, msg ...interface{}) {
	tb.Helper()
	assertions.ErrorContains(tb.Fatalf, want, err, msg...)
}

// Contains asserts that a string, slice or map contains element.
func Contains(tb assertions.AssertionTestingTB, s, element interface{}, msg ...interface{}) {
	tb.Helper()
	trequire.Contains(tb, s, element, msg...)
}

// Len asserts the length of a slice, map, string or channel.
func Len(tb assertions.AssertionTestingTB, obj interface{}, length int, msg ...interface{}) {
	tb.Helper()
	trequire.Len(tb, obj, length, msg...)
}

// Empty asserts that obj is the zero value or has no elements.
func Empty(tb assertions.AssertionTestingTB, obj interface{}, msg ...interface{}) {
	tb.Helper()
	trequire.Empty(tb, obj, msg...)
}

// NotNil asserts that passed value is not nil.
func NotNil(tb assertions.AssertionTestingTB, obj interface{}, msg ...interface{}) {
	tb.Helper()
	trequire.NotNil(tb, obj, msg...)
}

// IsType asserts that obj has the same type as expectedType.
func IsType(tb assertions.AssertionTestingTB, expectedType, obj interface{}, msg ...interface{}) {
	tb.Helper()
	trequire.IsType(tb, expectedType, obj, msg...)
}

// Panics asserts that f panics.
func Panics(tb assertions.AssertionTestingTB, f func(), msg ...interface{}) {
	tb.Helper()
	trequire.Panics(tb, f, msg...)
}

// Greater asserts that e1 > e2.
func Greater(tb assertions.AssertionTestingTB, e1, e2 interface{}, msg ...interface{}) {
	tb.Helper()
	trequire.Greater(tb, e1, e2, msg...)
}

// LessOrEqual asserts that e1 <= e2.
func LessOrEqual(tb assertions.AssertionTestingTB, e1, e2 interface{}, msg ...interface{}) {
	tb.Helper()
	trequire.LessOrEqual(tb, e1, e2, msg...)
}

// Eventually asserts that condition becomes true within waitFor, checking every tick.
func Eventually(tb assertions.AssertionTestingTB, condition func() bool, waitFor, tick time.Duration, msg ...interface{}) {
	tb.Helper()
	trequire.Eventually(tb, condition, waitFor, tick, msg...)
}

// LogsContain checks that the desired string is a subset of the current log output.
func LogsContain(tb assertions.AssertionTestingTB, hook *test.Hook, want string, msg ...interface{}) {
	tb.Helper()
	assertions.LogsContain(tb.Fatalf, hook, want, true, msg...)
}

// LogsDoNotContain is the inverse check of LogsContain.
func LogsDoNotContain(tb assertions.AssertionTestingTB, hook *test.Hook, want string, msg ...interface{}) {
	tb.Helper()
	assertions.LogsContain(tb.Fatalf, hook, want, false, msg...)
}
