package streams

import (
	"github.com/lguibr/bollywood/actor"
	"github.com/lguibr/bollywood/future"
)

// MaterializedPipeline is the handle build_pipeline returns: refs to
// the two end stages, a future that completes when the pipeline
// reaches a terminal state, a cancel function, and (for pipelines
// ending in NewCollectSink) the channel elements arrive on.
type MaterializedPipeline struct {
	SourceRef  actor.ActorRef
	SinkRef    actor.ActorRef
	Completion future.Future[any]
	Cancel     func()
	Out        <-chan any
}

// BuildPipeline spawns one actor per stage (source, each flow in
// order, an internal completion tap, then the sink) and chains their
// subscriptions back to front. Re-calling BuildPipeline always
// materializes a fresh graph; nothing is shared between
// materializations.
func BuildPipeline(
	sys *actor.System,
	source actor.Factory,
	flows []func(upstream actor.ActorRef) actor.Factory,
	sink func(upstream actor.ActorRef) actor.Factory,
	initialDemand uint64,
) MaterializedPipeline {
	sourceRef := sys.Spawn(source)

	upstream := sourceRef
	for _, buildFlow := range flows {
		upstream = sys.Spawn(buildFlow(upstream))
	}

	promise := future.NewPromise[any]()
	tap := sys.Spawn(NewCompletionFlow(upstream, promise))

	sinkRef := sys.Spawn(sink(tap))
	if initialDemand > 0 {
		sinkRef.Tell(Request{N: initialDemand})
	}

	return MaterializedPipeline{
		SourceRef:  sourceRef,
		SinkRef:    sinkRef,
		Completion: promise.Future(),
		Cancel:     func() { sinkRef.Tell(Cancel{}) },
	}
}

// FlowBuilder and SinkBuilder are the stage constructors the fluent
// composition API threads through: each receives the ref of the stage
// immediately upstream of it once that stage has been spawned.
type (
	FlowBuilder func(upstream actor.ActorRef) actor.Factory
	SinkBuilder func(upstream actor.ActorRef) actor.Factory
)

// Blueprint is an unmaterialized pipeline description. Building one is
// free of side effects; actors are spawned only by Run.
type Blueprint struct {
	source actor.Factory
	flows  []FlowBuilder
	sink   SinkBuilder
}

// From begins a fluent pipeline description at source.
func From(source actor.Factory) *Blueprint {
	return &Blueprint{source: source}
}

// Via appends a flow stage. Returns the receiver for chaining.
func (b *Blueprint) Via(flow FlowBuilder) *Blueprint {
	b.flows = append(b.flows, flow)
	return b
}

// To finishes the description with a sink stage.
func (b *Blueprint) To(sink SinkBuilder) *Blueprint {
	b.sink = sink
	return b
}

// Run materializes the blueprint into running actors. Each Run spawns a
// fresh graph; a Blueprint may be Run any number of times.
func (b *Blueprint) Run(sys *actor.System, initialDemand uint64) MaterializedPipeline {
	flows := make([]func(actor.ActorRef) actor.Factory, len(b.flows))
	for i, f := range b.flows {
		flows[i] = f
	}
	sink := b.sink
	if sink == nil {
		// No To call: drain and discard elements.
		sink = func(upstream actor.ActorRef) actor.Factory {
			return NewFoldSink(upstream, nil, func(acc, _ any) any { return acc }, future.NewPromise[any]())
		}
	}
	return BuildPipeline(sys, b.source, flows, sink, initialDemand)
}

// RunCollecting materializes the blueprint with a CollectSink appended,
// ignoring any sink set by To, and returns the output channel on Out.
func (b *Blueprint) RunCollecting(sys *actor.System, initialDemand uint64, bufferSize int) MaterializedPipeline {
	flows := make([]func(actor.ActorRef) actor.Factory, len(b.flows))
	for i, f := range b.flows {
		flows[i] = f
	}
	return BuildCollectingPipeline(sys, b.source, flows, initialDemand, bufferSize)
}

// BuildCollectingPipeline is the common case: a pipeline ending in a
// buffered channel, returned as Out.
func BuildCollectingPipeline(
	sys *actor.System,
	source actor.Factory,
	flows []func(upstream actor.ActorRef) actor.Factory,
	initialDemand uint64,
	bufferSize int,
) MaterializedPipeline {
	out := make(chan any, bufferSize)
	mp := BuildPipeline(sys, source, flows, func(upstream actor.ActorRef) actor.Factory {
		return NewCollectSink(upstream, out)
	}, initialDemand)
	mp.Out = out
	return mp
}
