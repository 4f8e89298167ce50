package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	type cfg struct {
		Port    int    `env:"TEST_LOADER_PORT" envDefault:"8080"`
		Backend string `env:"TEST_LOADER_BACKEND" envDefault:"demo"`
	}

	var c cfg
	require.NoError(t, Load(&c))
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, "demo", c.Backend)
}

func TestLoad_FromEnvironment(t *testing.T) {
	type cfg struct {
		Port    int      `env:"TEST_LOADER_PORT2" envDefault:"8080"`
		Origins []string `env:"TEST_LOADER_ORIGINS" envSeparator:","`
	}

	t.Setenv("TEST_LOADER_PORT2", "9001")
	t.Setenv("TEST_LOADER_ORIGINS", "https://a.example,https://b.example")

	var c cfg
	require.NoError(t, Load(&c))
	assert.Equal(t, 9001, c.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Origins)
}

func TestLoad_InvalidValue(t *testing.T) {
	type cfg struct {
		Port int `env:"TEST_LOADER_PORT3"`
	}

	t.Setenv("TEST_LOADER_PORT3", "not-a-number")

	var c cfg
	assert.Error(t, Load(&c))
}
