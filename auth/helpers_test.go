package auth

import (
	"testing"

	"groovr/config"
)

func initTestConfig(t *testing.T) {
	t.Helper()
	config.NewConfig()
	t.Cleanup(func() { config.Config = nil })
}
