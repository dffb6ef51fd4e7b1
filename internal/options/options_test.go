package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type containerConfig struct {
	threads int
	name    string
	calls   []string
}

func withThreads(n int) Option[*containerConfig] {
	return New(func(c *containerConfig) error {
		if n < 1 {
			return errors.New("threads must be positive")
		}
		c.threads = n
		c.calls = append(c.calls, "threads")

		return nil
	})
}

func withName(name string) Option[*containerConfig] {
	return NoError(func(c *containerConfig) {
		c.name = name
		c.calls = append(c.calls, "name")
	})
}

func TestApply(t *testing.T) {
	t.Run("Applies in order", func(t *testing.T) {
		cfg := &containerConfig{}
		err := Apply(cfg, withName("x"), withThreads(4))

		require.NoError(t, err)
		require.Equal(t, 4, cfg.threads)
		require.Equal(t, "x", cfg.name)
		require.Equal(t, []string{"name", "threads"}, cfg.calls)
	})

	t.Run("Stops at first error", func(t *testing.T) {
		cfg := &containerConfig{}
		err := Apply(cfg, withThreads(0), withName("never"))

		require.EqualError(t, err, "threads must be positive")
		require.Empty(t, cfg.name)
	})

	t.Run("Skips nil options", func(t *testing.T) {
		cfg := &containerConfig{}
		err := Apply(cfg, nil, withName("y"))

		require.NoError(t, err)
		require.Equal(t, "y", cfg.name)
	})

	t.Run("No options", func(t *testing.T) {
		require.NoError(t, Apply(&containerConfig{}))
	})
}
