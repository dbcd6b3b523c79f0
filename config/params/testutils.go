package params

import "testing"

// SetupTestConfigCleanup preserves configurations allowing to modify them within tests without any
// restrictions, everything is restored after the test.
func SetupTestConfigCleanup(t testing.TB) {
	prev := BeaconConfig().Copy()
	t.Cleanup(func() {
		OverrideBeaconConfig(prev)
	})
}

// SetupMinimalTestConfig switches the active config to the minimal preset for the duration of the test.
func SetupMinimalTestConfig(t testing.TB) {
	SetupTestConfigCleanup(t)
	OverrideBeaconConfig(MinimalSpecConfig())
}
