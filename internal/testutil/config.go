package testutil

import (
	"testing"

	"github.com/spf13/viper"
)

// ResetConfig resets viper now and again when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
}

// SetViperValue sets a viper configuration value and restores the previous
// value on cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		// viper has no Unset, so a previously unset key keeps the test value
		// until the next viper.Reset.
		if hadValue {
			viper.Set(key, oldValue)
		}
	})
}

// SetupTestStore points the preferences store and log file into env so
// commands under test never touch the working directory.
func SetupTestStore(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("bookfinder.db")
	SetViperValue(t, "store.dbfile", dbPath)
	SetViperValue(t, "log.file", env.Path("bookfinder.log"))
	return dbPath
}
