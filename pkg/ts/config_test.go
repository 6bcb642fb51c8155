package ts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnvironment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Environment
	}{
		{"simulation", EnvironmentSimulation},
		{"Simulation", EnvironmentSimulation},
		{"SIMULATION", EnvironmentSimulation},
		{"live", EnvironmentLive},
		{"Live", EnvironmentLive},
		{"", EnvironmentLive},
		{"production", EnvironmentLive},
	}

	for _, test := range tests {
		test := test

		t.Run("input "+test.input, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, test.expected, ParseEnvironment(test.input))
		})
	}
}

func TestEnvironmentBaseURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://api.tradestation.com", EnvironmentLive.BaseURL())
	assert.Equal(t, "https://sim.api.tradestation.com", EnvironmentSimulation.BaseURL())

	// Unknown values behave as Live.
	assert.Equal(t, "https://api.tradestation.com", Environment("staging").BaseURL())
}
