package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Run must fail fast when configuration is invalid: nothing should start.
func TestRunFailsOnInvalidConfig(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://x.test")
	t.Setenv("SUPABASE_KEY", "key")
	t.Setenv("SECRET_KEY", "too-short")

	assert.Equal(t, 1, Run(Options{}))
}

func TestRunFailsOnMissingEnvFile(t *testing.T) {
	assert.Equal(t, 1, Run(Options{EnvFile: "no-such.env"}))
}
