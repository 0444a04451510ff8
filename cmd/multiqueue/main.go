// Command multiqueue demonstrates pkg/mqp the way the C++ original this
// engine is ported from demonstrates itself: a sample subscribe/enqueue
// run, and a copy-count comparison between size-tuned and speed-tuned
// delivery.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/asemenov/mqp/internal/glog"
	"github.com/asemenov/mqp/pkg/config"
	"github.com/asemenov/mqp/pkg/mqp"
	"github.com/asemenov/mqp/pkg/workerpool"
)

var (
	mode       = flag.String("mode", "sample", "sample, copies-size or copies-speed")
	configPath = flag.String("config", "configs", "directory to look for config.yaml in")
)

// loggerAdapter bridges the richer internal/glog.StructuredLogger to the
// single-method mqp.Logger the core actually depends on.
type loggerAdapter struct {
	log glog.StructuredLogger
}

func (a loggerAdapter) Errorf(format string, args ...any) {
	a.log.Error(fmt.Sprintf(format, args...), nil)
}

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger := glog.New(cfg.Log.Debug)

	go func() {
		switch *mode {
		case "sample":
			runSample(cfg, logger)
		case "copies-size":
			runCopiesDemo(cfg, logger, mqp.TuningSize)
		case "copies-speed":
			runCopiesDemo(cfg, logger, mqp.TuningSpeed)
		default:
			log.Fatalf("unknown mode %q: use sample, copies-size or copies-speed", *mode)
		}
		cancel()
	}()

	select {
	case <-stop:
		log.Println("signal received, shutting down")
		cancel()
	case <-ctx.Done():
	}
	log.Println("multiqueue exiting")
}

// runSample subscribes one consumer to one key, enqueues a batch of
// values, and waits for every value to be observed.
func runSample(cfg config.Config, logger glog.StructuredLogger) {
	fmt.Println("******************* Sample *******************")

	pool := workerpool.New(cfg.Pool.Workers)
	registry := mqp.NewRegistry[int, string](pool, mqp.WithLogger[int, string](loggerAdapter{logger}))
	defer registry.Close(context.Background())

	const key = 1
	const valuesCount = 10

	var remaining atomic.Int32
	remaining.Store(valuesCount)
	done := make(chan struct{})

	sub, err := registry.Subscribe(key, "sample-consumer", mqp.ConsumerFunc[int, string](func(k int, v string) {
		fmt.Printf("Consume key: <%d>, value: [%s]\n", k, v)
		if remaining.Add(-1) == 0 {
			close(done)
		}
	}))
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	for i := 0; i < valuesCount; i++ {
		registry.Enqueue(key, fmt.Sprintf("%d", i))
	}

	<-done
}

// copyCounted implements mqp.Cloner[copyCounted] so a speed-tuned store's
// per-cursor clone can be observed the way the C++ original counts
// MyVal's copy-and-create calls.
type copyCounted struct {
	s     string
	calls *atomic.Int64
}

func (c copyCounted) Clone() copyCounted {
	c.calls.Add(1)
	return copyCounted{s: c.s, calls: c.calls}
}

// runCopiesDemo shows that the number of engine-attributable copies for a
// fan-out publish is independent of how many consumers are subscribed
// under the size-tuned store (0 extra copies: consumers share one node
// list), and scales with consumer count under the speed-tuned store
// (1 clone per attached cursor).
func runCopiesDemo(cfg config.Config, logger glog.StructuredLogger, tuning mqp.Tuning) {
	fmt.Printf("******************* Copies demo (%v) *******************\n", tuning)

	pool := workerpool.New(cfg.Pool.Workers)
	registry := mqp.NewRegistry[int, copyCounted](
		pool,
		mqp.WithTuning[int, copyCounted](tuning),
		mqp.WithLogger[int, copyCounted](loggerAdapter{logger}),
	)
	defer registry.Close(context.Background())

	const key = 1
	const valuesCount = 10
	const consumersCount = 10

	var wg sync.WaitGroup
	wg.Add(consumersCount * valuesCount)

	for i := 0; i < consumersCount; i++ {
		sub, err := registry.Subscribe(key, i, mqp.ConsumerFunc[int, copyCounted](func(int, copyCounted) {
			wg.Done()
		}))
		if err != nil {
			log.Fatalf("subscribe consumer %d: %v", i, err)
		}
		defer sub.Unsubscribe()
	}

	var calls atomic.Int64
	for i := 0; i < valuesCount; i++ {
		registry.Enqueue(key, copyCounted{s: fmt.Sprintf("%d", i), calls: &calls})
	}

	wg.Wait()

	fmt.Printf("engine-attributable clones: %d (independent of consumer count under size tuning; scales with it under speed tuning)\n", calls.Load())
}
