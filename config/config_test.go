package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/bollywood/actor"
)

func TestDefaultsApplyWithNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.DispatcherParallelWorkers())
	assert.Equal(t, 10, cfg.SupervisionMaxRestarts())
}

func TestEnvironmentOverridesDottedKey(t *testing.T) {
	t.Setenv("BOLLYWOOD_DISPATCHER_PARALLEL_WORKERS", "7")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.DispatcherParallelWorkers())
}

func TestRootSupervisionReflectsStrategyKey(t *testing.T) {
	t.Setenv("BOLLYWOOD_SUPERVISION_DEFAULT_STRATEGY", "stop")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, actor.StrategyStop, cfg.RootSupervision().Strategy)
}
