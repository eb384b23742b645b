package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	splitloader "github.com/lakequery/splitloader"
	"github.com/lakequery/splitloader/formats"
	"github.com/lakequery/splitloader/fs"
	"github.com/lakequery/splitloader/sink"
)

type staticSession struct{ forceLocal bool }

func (s staticSession) ForceLocalScheduling() bool { return s.forceLocal }

func writeFiles(t *testing.T, dir string, n int) []string {
	t.Helper()
	var paths []string
	for i := 0; i < n; i++ {
		p := filepath.Join(dir, fmt.Sprintf("file-%02d.txt", i))
		require.NoError(t, os.WriteFile(p, []byte(fmt.Sprintf("contents-%d", i)), 0o644))
		paths = append(paths, p)
	}
	return paths
}

// drainUntilDone runs loader.Start in a goroutine while repeatedly draining
// splitSink, exactly the pattern cmd/splitloaderd uses to avoid deadlocking
// on backpressure, returning every split collected in enqueue order.
func drainUntilDone(t *testing.T, loader *BackgroundSplitLoader, s *sink.BoundedSplitSink) []*splitloader.InternalSplit {
	t.Helper()
	done := make(chan struct{})
	go func() {
		loader.Start(context.Background())
		close(done)
	}()

	var collected []*splitloader.InternalSplit
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case <-ticker.C:
			collected = append(collected, s.Drain()...)
		case <-done:
			collected = append(collected, s.Drain()...)
			return collected
		case <-timeout:
			t.Fatal("timed out waiting for BackgroundSplitLoader to finish")
		}
	}
}

func TestBackgroundSplitLoaderGenericUnpartitionedTwoFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, 2)

	table := &splitloader.Table{
		Name: "t",
		Storage: &splitloader.StorageDescriptor{
			Location:    dir,
			InputFormat: formats.GenericInputFormat{},
		},
	}
	local := fs.NewLocal()
	splitSink := sink.NewBoundedSplitSink(64)

	loader := New(Params{
		Table:      table,
		Partitions: []splitloader.Partition{{Name: "unpartitioned"}},
		Resolver:   fs.NewSingleFilesystemResolver(local),
		Sink:       splitSink,
		Session:    staticSession{},
		Options:    splitloader.Options{LoaderConcurrency: 2, RecursiveDirWalkerEnabled: true},
		Logger:     zerolog.Nop(),
	})

	collected := drainUntilDone(t, loader, splitSink)
	require.Len(t, collected, 2)
	require.NoError(t, splitSink.Err())
}

func TestBackgroundSplitLoaderBackpressureNoSplitDroppedOrDuplicated(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, 8)

	table := &splitloader.Table{
		Name: "t",
		Storage: &splitloader.StorageDescriptor{
			Location:    dir,
			InputFormat: formats.GenericInputFormat{},
		},
	}
	local := fs.NewLocal()
	splitSink := sink.NewBoundedSplitSink(2) // small capacity forces repeated backpressure

	loader := New(Params{
		Table:      table,
		Partitions: []splitloader.Partition{{Name: "unpartitioned"}},
		Resolver:   fs.NewSingleFilesystemResolver(local),
		Sink:       splitSink,
		Session:    staticSession{},
		Options:    splitloader.Options{LoaderConcurrency: 1, RecursiveDirWalkerEnabled: true},
		Logger:     zerolog.Nop(),
	})

	collected := drainUntilDone(t, loader, splitSink)
	require.Len(t, collected, 8)

	seen := map[string]int{}
	for _, split := range collected {
		seen[split.Path]++
	}
	for path, count := range seen {
		require.Equal(t, 1, count, "split for %s should be enqueued exactly once", path)
	}
}

func TestBackgroundSplitLoaderPathDomainPruning(t *testing.T) {
	dir := t.TempDir()
	paths := writeFiles(t, dir, 3)

	table := &splitloader.Table{
		Name: "t",
		Storage: &splitloader.StorageDescriptor{
			Location:    dir,
			InputFormat: formats.GenericInputFormat{},
		},
	}
	local := fs.NewLocal()
	splitSink := sink.NewBoundedSplitSink(64)

	loader := New(Params{
		Table:              table,
		Partitions:         []splitloader.Partition{{Name: "unpartitioned"}},
		Resolver:           fs.NewSingleFilesystemResolver(local),
		Sink:               splitSink,
		Session:            staticSession{},
		Options:            splitloader.Options{LoaderConcurrency: 2, RecursiveDirWalkerEnabled: true},
		EffectivePredicate: splitloader.SingleValueDomain{Value: paths[0]},
		Logger:             zerolog.Nop(),
	})

	collected := drainUntilDone(t, loader, splitSink)
	require.Len(t, collected, 1)
	require.Equal(t, paths[0], collected[0].Path)
}

func TestBackgroundSplitLoaderBucketedCountMismatchFailsSink(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, 1) // declared bucket count below won't match

	table := &splitloader.Table{
		Name: "t",
		Storage: &splitloader.StorageDescriptor{
			Location:    dir,
			InputFormat: formats.GenericInputFormat{},
		},
		Bucketing: &splitloader.BucketHandle{BucketCount: 4},
	}
	local := fs.NewLocal()
	splitSink := sink.NewBoundedSplitSink(64)

	loader := New(Params{
		Table:      table,
		Partitions: []splitloader.Partition{{Name: "p0"}},
		Resolver:   fs.NewSingleFilesystemResolver(local),
		Sink:       splitSink,
		Session:    staticSession{},
		Options:    splitloader.Options{LoaderConcurrency: 2},
		Logger:     zerolog.Nop(),
	})

	drainUntilDone(t, loader, splitSink)
	require.Error(t, splitSink.Err())
}
