package actor

type spawnConfig struct {
	dispatcherKind DispatcherKind
	throughput     int
	supervision    SupervisionConfig
}

func defaultSpawnConfig() spawnConfig {
	return spawnConfig{
		dispatcherKind: KindParallel,
		throughput:     1,
		supervision:    DefaultSupervisionConfig(),
	}
}

// SpawnOption customizes one actor at spawn time.
type SpawnOption func(*spawnConfig)

// WithDispatcher selects which of the three dispatcher kinds runs this
// actor's mailbox.
func WithDispatcher(kind DispatcherKind) SpawnOption {
	return func(c *spawnConfig) { c.dispatcherKind = kind }
}

// WithThroughput bounds how many user messages a single drain pass may
// process before yielding the worker back to other actors; the default
// of 1 is maximally fair, larger values trade fairness for less
// rescheduling overhead on a hot actor.
func WithThroughput(n int) SpawnOption {
	return func(c *spawnConfig) {
		if n < 1 {
			n = 1
		}
		c.throughput = n
	}
}

// WithSupervision overrides the SupervisionConfig this actor applies to
// its own children's failures.
func WithSupervision(cfg SupervisionConfig) SpawnOption {
	return func(c *spawnConfig) { c.supervision = cfg }
}
