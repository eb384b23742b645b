// Package engine implements the cooperative worker pool that drives a
// BackgroundSplitLoader run: LoaderTask (the per-goroutine loop),
// TerminationArbiter (the racy-check-then-write-lock-confirm termination
// detector), and BackgroundSplitLoader itself (the orchestrator that owns
// the two-level work queue and starts/stops the pool). Grounded on
// BackgroundHiveSplitLoader.loadSplits / process / checkAllPartitionsLoaded
// (original_source/presto-hive/.../BackgroundHiveSplitLoader.java).
package engine

import (
	"context"
	"sync"
	"sync/atomic"

	uuid "github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	splitloader "github.com/lakequery/splitloader"
	"github.com/lakequery/splitloader/internal/fileiter"
	"github.com/lakequery/splitloader/internal/loader"
	"github.com/lakequery/splitloader/internal/queue"
	"github.com/lakequery/splitloader/internal/splitfactory"
	"github.com/lakequery/splitloader/internal/util"
)

// TerminationArbiter implements the racy-check-then-confirm termination
// detection described by the distilled spec's §4.6: a read/write lock
// guards the two-level queue, but the terminal call to sink.NoMoreSplits is
// never made while any lock is held, since sync.RWMutex is not reentrant
// (see Design Notes §9, and DESIGN.md's Open Question resolution).
type TerminationArbiter struct {
	lock          *sync.RWMutex
	partitions    *queue.PartitionQueue
	fileIterators *queue.FileIteratorDeque
	sink          splitloader.SplitSink
	terminating   atomic.Bool
}

func newTerminationArbiter(lock *sync.RWMutex, partitions *queue.PartitionQueue, fileIterators *queue.FileIteratorDeque, sink splitloader.SplitSink) *TerminationArbiter {
	return &TerminationArbiter{lock: lock, partitions: partitions, fileIterators: fileIterators, sink: sink}
}

// MaybeSignalNoMoreSplits performs the racy check, then the confirming
// check under the write lock, then -- outside any lock -- fires
// sink.NoMoreSplits at most once, guarded by a CAS on terminating.
func (a *TerminationArbiter) MaybeSignalNoMoreSplits() {
	if !a.partitions.IsEmpty() || !a.fileIterators.IsEmpty() {
		return
	}

	a.lock.Lock()
	drained := a.partitions.IsEmpty() && a.fileIterators.IsEmpty()
	fire := drained && a.terminating.CompareAndSwap(false, true)
	a.lock.Unlock()

	if fire {
		a.sink.NoMoreSplits()
	}
}

// LoaderTask is one goroutine's worker loop, cooperating with its peers
// through the shared PartitionQueue, FileIteratorDeque, and read/write lock.
// It corresponds to one instance of the distilled spec's ResumableTask.
type LoaderTask struct {
	id            int
	lock          *sync.RWMutex
	partitions    *queue.PartitionQueue
	fileIterators *queue.FileIteratorDeque
	loader        *loader.PartitionLoader
	sink          splitloader.SplitSink
	session       splitloader.Session
	arbiter       *TerminationArbiter
	stopped       *atomic.Bool
	recursive     bool
	io            *semaphore.Weighted
	log           zerolog.Logger
}

// run executes process() in a loop until the task observes stop or the
// queues are permanently drained, per §4.5.
func (t *LoaderTask) run(ctx context.Context) {
	for {
		if t.stopped.Load() {
			return
		}

		signal, err := t.processOnce(ctx)
		if err != nil {
			t.log.Error().Err(err).Int("task", t.id).Msg("loader task failed, failing sink")
			t.sink.Fail(err)
		}

		t.arbiter.MaybeSignalNoMoreSplits()

		if signal == nil || signal.IsDone() {
			if t.queuesDrained() {
				return
			}
			continue
		}

		select {
		case <-signal.Done():
		case <-ctx.Done():
			return
		}
	}
}

func (t *LoaderTask) queuesDrained() bool {
	return t.partitions.IsEmpty() && t.fileIterators.IsEmpty()
}

// processOnce holds the read lock for one call to loadSplits, matching the
// "read lock held for the whole regulated sequence" rule of §5.
func (t *LoaderTask) processOnce(ctx context.Context) (signal splitloader.CompletionSignal, err error) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	err = util.SafeCall(func() error {
		var innerErr error
		signal, innerErr = t.loadSplits(ctx)
		return innerErr
	})
	return signal, err
}

// loadSplits implements §4.5's loadSplits(): try a parked FileIterator
// first, then a fresh partition, then drain whichever FileIterator this
// call is left holding.
func (t *LoaderTask) loadSplits(ctx context.Context) (splitloader.CompletionSignal, error) {
	if it, ok := t.fileIterators.PollFirst(); ok {
		return t.drainFileIterator(ctx, it)
	}

	partition, ok := t.partitions.Poll()
	if !ok {
		return splitloader.Completed(), nil
	}

	t.log.Debug().Str("partition", partition.Name).Int("task", t.id).Msg("dispatching partition")
	return t.loader.Load(ctx, partition)
}

// drainFileIterator implements the generic per-file walk from §4.5: recurse
// into directories when enabled, build a whole-file split for every plain
// file, and re-park on backpressure.
func (t *LoaderTask) drainFileIterator(ctx context.Context, it *fileiter.FileIterator) (splitloader.CompletionSignal, error) {
	for {
		hasNext, err := ioGuarded(ctx, t.io, func() (bool, error) { return it.HasNext(ctx) })
		if err != nil {
			return nil, err
		}
		if !hasNext || t.stopped.Load() {
			return splitloader.Completed(), nil
		}

		entry, err := ioGuarded(ctx, t.io, func() (splitloader.FileStatus, error) { return it.Next(ctx) })
		if err != nil {
			return nil, err
		}

		if entry.IsDir {
			if t.recursive {
				child := fileiter.New(entry.Path, it.Filesystem, it.PartitionName, it.InputFormat, it.Schema, it.PartitionKeys, it.EffectivePredicate, it.Coercions)
				t.fileIterators.AddLast(child)
			}
			continue
		}

		signal, err := t.emitWholeFileSplit(ctx, it, entry)
		if err != nil {
			return nil, err
		}
		if !signal.IsDone() {
			t.fileIterators.AddFirst(it)
			return signal, nil
		}
	}
}

func (t *LoaderTask) emitWholeFileSplit(ctx context.Context, it *fileiter.FileIterator, entry splitloader.FileStatus) (splitloader.CompletionSignal, error) {
	splittable, err := it.InputFormat.IsSplittable(ctx, it.Filesystem, entry.Path)
	if err != nil {
		return nil, err
	}
	blocks, err := it.Filesystem.GetFileBlockLocations(ctx, entry, 0, entry.Length)
	if err != nil {
		return nil, err
	}
	split, err := splitfactory.Create(splitfactory.CreateParams{
		PartitionName:        it.PartitionName,
		Path:                 entry.Path,
		BlockLocations:       blocks,
		Start:                0,
		Length:               entry.Length,
		FileSize:             entry.Length,
		Schema:               it.Schema,
		PartitionKeys:        it.PartitionKeys,
		Splittable:           splittable,
		ForceLocalScheduling: t.session.ForceLocalScheduling(),
		Coercions:            it.Coercions,
		PathDomain:           it.EffectivePredicate,
	})
	if err != nil {
		return nil, err
	}
	if split == nil {
		return splitloader.Completed(), nil
	}
	return t.sink.AddToQueue(split), nil
}

// ioGuarded bounds fn's execution by sem, when sem is non-nil, so that no
// more than Options.MaxConcurrentIO FileIterator calls (the generic walk's
// directory listings) are in flight at once, independent of
// LoaderConcurrency itself. Other Filesystem calls are not routed through it.
func ioGuarded[T any](ctx context.Context, sem *semaphore.Weighted, fn func() (T, error)) (T, error) {
	if sem == nil {
		return fn()
	}
	var zero T
	if err := sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}
	defer sem.Release(1)
	return fn()
}

// BackgroundSplitLoader is the orchestrator: it owns the two-level work
// queue and the read/write lock, and starts/stops the LoaderTask pool.
type BackgroundSplitLoader struct {
	table   *splitloader.Table
	loader  *loader.PartitionLoader
	sink    splitloader.SplitSink
	session splitloader.Session
	options splitloader.Options

	lock          sync.RWMutex
	partitions    *queue.PartitionQueue
	fileIterators *queue.FileIteratorDeque
	arbiter       *TerminationArbiter

	stopped atomic.Bool
	runID   string
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// Params bundles the collaborators BackgroundSplitLoader needs to run.
type Params struct {
	Table              *splitloader.Table
	Partitions         []splitloader.Partition
	Resolver           splitloader.FilesystemResolver
	Sink               splitloader.SplitSink
	Session            splitloader.Session
	Options            splitloader.Options
	EffectivePredicate splitloader.PathDomain
	Logger             zerolog.Logger
}

// New builds a BackgroundSplitLoader ready to Start.
func New(p Params) *BackgroundSplitLoader {
	id, err := uuid.NewV4()
	runID := "unknown-run"
	if err == nil {
		runID = id.String()
	}

	partitions := queue.NewPartitionQueue(p.Partitions)
	fileIterators := queue.NewFileIteratorDeque()

	b := &BackgroundSplitLoader{
		table:         p.Table,
		sink:          p.Sink,
		session:       p.Session,
		options:       p.Options,
		partitions:    partitions,
		fileIterators: fileIterators,
		runID:         runID,
		log:           p.Logger.With().Str("run_id", runID).Logger(),
	}
	b.arbiter = newTerminationArbiter(&b.lock, partitions, fileIterators, p.Sink)
	b.loader = &loader.PartitionLoader{
		Table:              p.Table,
		Resolver:           p.Resolver,
		FileIterators:      fileIterators,
		Sink:               p.Sink,
		Session:            p.Session,
		EffectivePredicate: p.EffectivePredicate,
		IsStopped:          b.stopped.Load,
	}
	return b
}

// Start spins up Options.LoaderConcurrency LoaderTask goroutines and blocks
// until every one of them observes the queues fully drained (or Stop is
// called). Mirrors the teacher's "blocking unless run in a goroutine"
// lifecycle convention (cluster.coordinator.Start).
func (b *BackgroundSplitLoader) Start(ctx context.Context) {
	concurrency := b.options.LoaderConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var io *semaphore.Weighted
	if b.options.MaxConcurrentIO > 0 {
		io = semaphore.NewWeighted(b.options.MaxConcurrentIO)
	}

	b.log.Info().Int("concurrency", concurrency).Msg("starting background split loader")

	b.wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		task := &LoaderTask{
			id:            i,
			lock:          &b.lock,
			partitions:    b.partitions,
			fileIterators: b.fileIterators,
			loader:        b.loader,
			sink:          b.sink,
			session:       b.session,
			arbiter:       b.arbiter,
			stopped:       &b.stopped,
			recursive:     b.options.RecursiveDirWalkerEnabled,
			io:            io,
			log:           b.log,
		}
		go func() {
			defer b.wg.Done()
			task.run(ctx)
		}()
	}
	b.wg.Wait()
	b.log.Info().Msg("background split loader finished")
}

// Stop sets the cancellation flag consulted by every LoaderTask on each
// loop iteration and at bucket/symlink boundaries. It does not itself call
// NoMoreSplits; the arbiter fires that once the queues drain, or the caller
// may close the sink externally, per §5.
func (b *BackgroundSplitLoader) Stop() {
	b.stopped.Store(true)
}
