package extension

// EventJournal is an append-only per-actor log, the durable-state
// collaborator an event-sourced actor replays on restart. The one
// concrete implementation, persistence.SQLiteJournal, registers against
// an ID constructed in that package.
type EventJournal interface {
	Append(key ActorKey, payload []byte) (seq uint64, err error)
	Read(key ActorKey) ([][]byte, error)
}

// DurableState is a keyed snapshot store, the simpler alternative to an
// EventJournal for an actor that only ever needs its latest state.
type DurableState interface {
	Save(key ActorKey, data []byte) error
	Load(key ActorKey) (data []byte, found bool, err error)
	Delete(key ActorKey) error
}

// The remaining four extensions are referenced only at their
// interfaces. No concrete implementation and no extension ID ships for
// them; a deployment declares its own ID with NewID without touching
// actor core.

// HTTPGateway would expose actor mailboxes over HTTP.
type HTTPGateway interface {
	Serve(addr string) error
	Shutdown() error
}

// SkillRegistry would resolve named, file-backed capabilities an actor
// can invoke by name.
type SkillRegistry interface {
	Lookup(name string) (skill any, found bool)
	Register(name string, skill any)
}

// EmbeddingService would turn text into vectors for a retrieval-backed
// actor.
type EmbeddingService interface {
	Embed(text string) ([]float32, error)
}

// LLMGateway would front a language-model backend for an actor that
// delegates reasoning to one.
type LLMGateway interface {
	Complete(prompt string) (string, error)
}
