package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestBackoffDelayStaysWithinConfiguredBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := SupervisionConfig{
			BackoffMin:    time.Duration(rapid.IntRange(1, 1000).Draw(t, "min_ms")) * time.Millisecond,
			BackoffFactor: rapid.Float64Range(1, 5).Draw(t, "factor"),
			Jitter:        rapid.Float64Range(0, 1).Draw(t, "jitter"),
		}
		cfg.BackoffMax = cfg.BackoffMin * 50
		count := rapid.IntRange(1, 20).Draw(t, "count")

		delay := backoffDelay(cfg, count)

		assert.GreaterOrEqual(t, delay, time.Duration(0))
		maxPossible := time.Duration(float64(cfg.BackoffMax) * (1 + cfg.Jitter))
		assert.LessOrEqual(t, delay, maxPossible)
	})
}

func TestBackoffDelayTreatsNonPositiveCountAsOne(t *testing.T) {
	cfg := DefaultSupervisionConfig()
	cfg.Jitter = 0
	assert.Equal(t, backoffDelay(cfg, 1), backoffDelay(cfg, 0))
	assert.Equal(t, backoffDelay(cfg, 1), backoffDelay(cfg, -5))
}
