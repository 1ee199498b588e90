package config

import (
	"strings"

	"github.com/lguibr/bollywood/actor"
)

// RootSupervision builds the SupervisionConfig top-level actors use
// from supervision.default.* keys.
func (c *Config) RootSupervision() actor.SupervisionConfig {
	cfg := actor.DefaultSupervisionConfig()
	cfg.MaxRestarts = c.SupervisionMaxRestarts()
	cfg.Within = c.SupervisionWithin()
	cfg.BackoffMin = c.SupervisionBackoffMin()
	cfg.BackoffMax = c.SupervisionBackoffMax()
	cfg.BackoffFactor = c.SupervisionBackoffFactor()
	cfg.Jitter = c.SupervisionJitter()

	switch strings.ToLower(c.v.GetString("supervision.default.strategy")) {
	case "stop":
		cfg.Strategy = actor.StrategyStop
	case "resume":
		cfg.Strategy = actor.StrategyResume
	case "escalate":
		cfg.Strategy = actor.StrategyEscalate
	default:
		cfg.Strategy = actor.StrategyRestart
	}
	if strings.ToLower(c.v.GetString("supervision.default.scope")) == "all_for_one" {
		cfg.Scope = actor.AllForOne
	}
	return cfg
}
