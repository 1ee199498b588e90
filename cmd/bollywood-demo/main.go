// Command bollywood-demo exercises the actor runtime end to end: a
// supervised counter actor, an Ask round trip, a demand-driven
// pipeline over a tick source, and a SQLite-journaled actor.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lguibr/bollywood/actor"
	bconfig "github.com/lguibr/bollywood/config"
	"github.com/lguibr/bollywood/extension"
	"github.com/lguibr/bollywood/future"
	"github.com/lguibr/bollywood/persistence"
	"github.com/lguibr/bollywood/streams"
)

func main() {
	root := &cobra.Command{
		Use:   "bollywood-demo",
		Short: "Runs a small fleet of actors demonstrating ask, supervision, and streams",
	}
	var configPath string
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML/JSON config file (optional)")

	root.AddCommand(newCounterCmd(&configPath))
	root.AddCommand(newStreamCmd(&configPath))
	root.AddCommand(newPersistCmd(&configPath))
	root.AddCommand(newConfigCmd(&configPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildSystem(configPath string) (*actor.System, *bconfig.Config, error) {
	cfg, err := bconfig.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger, _ := zap.NewDevelopment()
	sys := actor.NewSystem(
		actor.WithLogger(logger),
		actor.WithRootSupervision(cfg.RootSupervision()),
	)
	return sys, cfg, nil
}

type incr struct{ by int }
type getCount struct{ token string }
type boom struct{}

func counterBehavior(ctx *actor.Context) actor.Behavior {
	count := 0
	return func(ctx *actor.Context, message any) actor.Directive {
		switch m := message.(type) {
		case incr:
			count += m.by
			return actor.Same()
		case getCount:
			ctx.Reply(future.Response[int]{Token: m.token, Value: count})
			return actor.Same()
		case boom:
			panic("counter: synthetic failure for supervision demo")
		default:
			return actor.Same()
		}
	}
}

func newCounterCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "counter",
		Short: "Spawns a supervised counter actor, increments it, asks for its value, then crashes and recovers it",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, _, err := buildSystem(*configPath)
			if err != nil {
				return err
			}
			defer sys.Shutdown(5 * time.Second)

			// The counter runs as a child so its parent's supervision
			// config decides what happens when it panics.
			counterCh := make(chan actor.ActorRef, 1)
			sys.Spawn(func(ctx *actor.Context) actor.Behavior {
				counterCh <- ctx.Spawn(counterBehavior)
				return func(ctx *actor.Context, message any) actor.Directive { return actor.Same() }
			}, actor.WithSupervision(actor.SupervisionConfig{
				Strategy:    actor.StrategyRestart,
				Scope:       actor.OneForOne,
				MaxRestarts: 3,
				Within:      time.Minute,
			}))
			counter := <-counterCh

			counter.Tell(incr{by: 5})
			counter.Tell(incr{by: 7})

			result, err := future.Ask[int](sys, counter, time.Second, func(replyTo actor.ActorRef, token string) any {
				return getCount{token: token}
			}).Await(2 * time.Second)
			if err != nil {
				return fmt.Errorf("ask failed: %w", err)
			}
			fmt.Printf("counter value before crash: %d\n", result)

			counter.Tell(boom{})
			time.Sleep(100 * time.Millisecond) // let the restart settle

			result, err = future.Ask[int](sys, counter, time.Second, func(replyTo actor.ActorRef, token string) any {
				return getCount{token: token}
			}).Await(2 * time.Second)
			if err != nil {
				return fmt.Errorf("ask after restart failed: %w", err)
			}
			fmt.Printf("counter value after restart: %d (restart resets incarnation state)\n", result)
			return nil
		},
	}
}

func newStreamCmd(configPath *string) *cobra.Command {
	var count uint64
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Runs a tick source through a filter/map pipeline into a collecting sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, _, err := buildSystem(*configPath)
			if err != nil {
				return err
			}
			defer sys.Shutdown(5 * time.Second)

			source := streams.NewTickSource(20*time.Millisecond, func(seq uint64) any { return seq })
			flows := []func(actor.ActorRef) actor.Factory{
				func(upstream actor.ActorRef) actor.Factory {
					return streams.NewFilterFlow(upstream, func(v any) bool { return v.(uint64)%2 == 0 })
				},
				func(upstream actor.ActorRef) actor.Factory {
					return streams.NewTakeFlow(upstream, count)
				},
				func(upstream actor.ActorRef) actor.Factory {
					return streams.NewMapFlow(upstream, func(v any) any { return v.(uint64) * 10 })
				},
			}
			mp := streams.BuildCollectingPipeline(sys, source, flows, count, int(count))

			for v := range mp.Out {
				fmt.Printf("stream element: %v\n", v)
			}
			if _, err := mp.Completion.Await(5 * time.Second); err != nil {
				return fmt.Errorf("pipeline did not complete cleanly: %w", err)
			}
			fmt.Println("pipeline completed")
			return nil
		},
	}
	cmd.Flags().Uint64Var(&count, "count", 5, "number of even ticks to take before completing")
	return cmd
}

type recordEvent struct{ payload string }

func journaledBehavior(journal *persistence.SQLiteJournal, key extension.ActorKey) actor.Factory {
	return func(ctx *actor.Context) actor.Behavior {
		return func(ctx *actor.Context, message any) actor.Directive {
			switch m := message.(type) {
			case recordEvent:
				if _, err := journal.Append(key, []byte(m.payload)); err != nil {
					panic(fmt.Sprintf("journal append failed: %v", err))
				}
				return actor.Same()
			case getCount:
				events, err := journal.Read(key)
				if err != nil {
					panic(fmt.Sprintf("journal read failed: %v", err))
				}
				ctx.Reply(future.Response[int]{Token: m.token, Value: len(events)})
				return actor.Same()
			default:
				return actor.Same()
			}
		}
	}
}

func newConfigCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Prints the effective configuration (defaults, file, environment merged) as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bconfig.Load(*configPath)
			if err != nil {
				return err
			}
			out, err := cfg.DumpYAML()
			if err != nil {
				return fmt.Errorf("rendering config: %w", err)
			}
			fmt.Print(string(out))
			return nil
		},
	}
}

func newPersistCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "persist",
		Short: "Appends a handful of events through an actor backed by a SQLite journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, cfg, err := buildSystem(*configPath)
			if err != nil {
				return err
			}
			defer sys.Shutdown(5 * time.Second)

			db, err := persistence.Open(cfg.SQLitePath())
			if err != nil {
				return fmt.Errorf("opening sqlite at %s: %w", cfg.SQLitePath(), err)
			}
			defer db.Close()

			journal := persistence.NewSQLiteJournal(db)
			key := extension.ActorKey(1)

			logged := sys.Spawn(journaledBehavior(journal, key))
			for i := 0; i < 3; i++ {
				logged.Tell(recordEvent{payload: fmt.Sprintf("event-%d", i)})
			}

			count, err := future.Ask[int](sys, logged, time.Second, func(replyTo actor.ActorRef, token string) any {
				return getCount{token: token}
			}).Await(2 * time.Second)
			if err != nil {
				return fmt.Errorf("ask failed: %w", err)
			}
			fmt.Printf("journal for actor key %d now holds %d event(s)\n", key, count)
			return nil
		},
	}
}
