package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, Config{TargetWidth: 500, DiffThreshold: 25, DilationIterations: 2, MinRegionArea: 500}, config)
	assert.NoError(t, config.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{name: "zero width", modify: func(c *Config) { c.TargetWidth = 0 }},
		{name: "negative threshold", modify: func(c *Config) { c.DiffThreshold = -1 }},
		{name: "threshold too large", modify: func(c *Config) { c.DiffThreshold = 256 }},
		{name: "negative iterations", modify: func(c *Config) { c.DilationIterations = -1 }},
		{name: "negative area", modify: func(c *Config) { c.MinRegionArea = -5 }},
		{name: "no dilation", modify: func(c *Config) { c.DilationIterations = 0 }, valid: true},
		{name: "maximum threshold", modify: func(c *Config) { c.DiffThreshold = 255 }, valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)

			if tt.valid {
				assert.NoError(t, config.Validate())
			} else {
				assert.Error(t, config.Validate())
			}
		})
	}
}
