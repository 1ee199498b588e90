// Package config loads the runtime's hierarchical configuration tree:
// YAML primary, JSON alternate, BOLLYWOOD_-prefixed environment
// overrides, addressed by dotted paths. The core consumes only the
// default supervision parameters, through RootSupervision when a caller
// passes its result to actor.WithRootSupervision. The dispatcher and
// executor keys have defaults and accessors here, but the runtime does
// not read them; every other key is read by whichever collaborator
// defines it.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config wraps a *viper.Viper with the defaults the actor runtime
// itself reads.
type Config struct {
	v *viper.Viper
}

// Load builds a Config from path (if non-empty) plus environment
// overrides. path may be a YAML or JSON file; viper infers the format
// from its extension. An empty path skips the file, and defaults and
// environment variables still apply; a non-empty path whose file cannot
// be read is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOLLYWOOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	return &Config{v: v}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dispatcher.parallel.workers", 24)
	v.SetDefault("dispatcher.default_throughput", 1)
	v.SetDefault("supervision.default.strategy", "restart")
	v.SetDefault("supervision.default.scope", "one_for_one")
	v.SetDefault("supervision.default.max_restarts", 10)
	v.SetDefault("supervision.default.within", "1m")
	v.SetDefault("supervision.default.backoff_min", "50ms")
	v.SetDefault("supervision.default.backoff_max", "10s")
	v.SetDefault("supervision.default.backoff_factor", 2.0)
	v.SetDefault("supervision.default.jitter", 0.2)
	v.SetDefault("executor.workers", 8)
	v.SetDefault("persistence.sqlite_path", "bollywood.db")
}

// DispatcherParallelWorkers is dispatcher.parallel.workers.
func (c *Config) DispatcherParallelWorkers() int { return c.v.GetInt("dispatcher.parallel.workers") }

// DefaultThroughput is dispatcher.default_throughput.
func (c *Config) DefaultThroughput() int { return c.v.GetInt("dispatcher.default_throughput") }

// SupervisionMaxRestarts is supervision.default.max_restarts.
func (c *Config) SupervisionMaxRestarts() int { return c.v.GetInt("supervision.default.max_restarts") }

// SupervisionWithin is supervision.default.within.
func (c *Config) SupervisionWithin() time.Duration { return c.v.GetDuration("supervision.default.within") }

// SupervisionBackoffMin is supervision.default.backoff_min.
func (c *Config) SupervisionBackoffMin() time.Duration {
	return c.v.GetDuration("supervision.default.backoff_min")
}

// SupervisionBackoffMax is supervision.default.backoff_max.
func (c *Config) SupervisionBackoffMax() time.Duration {
	return c.v.GetDuration("supervision.default.backoff_max")
}

// SupervisionBackoffFactor is supervision.default.backoff_factor.
func (c *Config) SupervisionBackoffFactor() float64 {
	return c.v.GetFloat64("supervision.default.backoff_factor")
}

// SupervisionJitter is supervision.default.jitter.
func (c *Config) SupervisionJitter() float64 { return c.v.GetFloat64("supervision.default.jitter") }

// ExecutorWorkers is executor.workers.
func (c *Config) ExecutorWorkers() int { return c.v.GetInt("executor.workers") }

// SQLitePath is persistence.sqlite_path.
func (c *Config) SQLitePath() string { return c.v.GetString("persistence.sqlite_path") }

// Get reads an arbitrary dotted key for a collaborator that defines its
// own configuration surface on top of the core's.
func (c *Config) Get(key string) any { return c.v.Get(key) }

// DumpYAML renders every resolved setting (defaults, file, and
// environment overrides merged) back out as YAML, for an operator
// inspecting what a deployment actually resolved to.
func (c *Config) DumpYAML() ([]byte, error) {
	return yaml.Marshal(c.v.AllSettings())
}
