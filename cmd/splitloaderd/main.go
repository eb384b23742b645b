// Command splitloaderd is a small demo harness: it walks a local directory
// tree as if it were one unpartitioned table, feeding every discovered
// split into a bounded in-memory sink, and reports how many splits (and
// how many locality-preserving blocks) it produced.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	splitloader "github.com/lakequery/splitloader"
	"github.com/lakequery/splitloader/formats"
	"github.com/lakequery/splitloader/fs"
	"github.com/lakequery/splitloader/internal/config"
	"github.com/lakequery/splitloader/internal/engine"
	"github.com/lakequery/splitloader/logging"
	"github.com/lakequery/splitloader/sink"
)

type staticPathDomain struct{}

func (staticPathDomain) IncludesNullableValue(string) bool { return true }

func main() {
	configPath := flag.String("config", "", "path to splitloaderd.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := logging.InfoLevel
	switch cfg.LogLevel {
	case "trace":
		level = logging.TraceLevel
	case "debug":
		level = logging.DebugLevel
	case "warn":
		level = logging.WarnLevel
	case "error":
		level = logging.ErrorLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(logging.ToZerolog(level)).
		With().Timestamp().Logger()

	table := &splitloader.Table{
		Name: "local_scan",
		Storage: &splitloader.StorageDescriptor{
			Location:    cfg.RootPath,
			InputFormat: formats.GenericInputFormat{},
		},
	}
	partitions := []splitloader.Partition{
		{Name: "unpartitioned", Storage: nil, Values: nil},
	}

	local := fs.NewLocal()
	resolver := fs.NewSingleFilesystemResolver(local)
	splitSink := sink.NewBoundedSplitSink(cfg.SinkCapacity)

	loader := engine.New(engine.Params{
		Table:              table,
		Partitions:         partitions,
		Resolver:           resolver,
		Sink:               splitSink,
		Session:            cfg.ToSession(),
		Options:            cfg.ToOptions(),
		EffectivePredicate: staticPathDomain{},
		Logger:             log,
	})

	stop := make(chan struct{})
	done := make(chan struct{})
	var totalSplits, totalBlocks int
	go func() {
		defer close(done)
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for _, split := range splitSink.Drain() {
					totalSplits++
					totalBlocks += len(split.Blocks)
				}
			case <-stop:
				for _, split := range splitSink.Drain() {
					totalSplits++
					totalBlocks += len(split.Blocks)
				}
				return
			}
		}
	}()

	loader.Start(context.Background())
	close(stop)
	<-done

	if err := splitSink.Err(); err != nil {
		log.Error().Err(err).Msg("split loading failed")
		os.Exit(1)
	}
	log.Info().Int("splits", totalSplits).Int("blocks", totalBlocks).Msg("split loading complete")
}
