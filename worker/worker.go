// Package worker implements the single-threaded, synchronous driver
// loop spec.md §5 describes: acquire the advisory lock, load state,
// fetch one candidate, validate it, and on success persist and submit.
// It is the concrete caller lightclient.ValidateAndUpdateHead assumes
// but never depends on, grounded on the teacher's
// common.BlockIngestor polling loop.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/flock"

	"github.com/near/lightclientd/collab"
	"github.com/near/lightclientd/config"
	"github.com/near/lightclientd/lightclient"
	"github.com/near/lightclientd/logging"
)

// ErrLockBusy is returned by Tick when another process (or another
// goroutine) already holds the advisory lock.
var ErrLockBusy = errors.New("worker: advisory lock is held by another process")

// Deps bundles a Tick call's collaborators. Built once by cmd and
// reused across ticks.
type Deps struct {
	Heads     collab.HeadStore
	Producers collab.ProducerStore
	Source    collab.BlockSource
	Submitter collab.Submitter
	LockPath  string
}

// Time allows Run's pacing to be mocked in tests, mirroring the
// teacher's common.Time indirection so tests don't sleep for real.
var Time = struct {
	Sleep func(d time.Duration)
}{
	Sleep: time.Sleep,
}

// Tick performs exactly one worker pass: acquire the lock, load state,
// fetch a candidate, validate, and on success persist and submit.
// Returns (advanced, err): advanced is true only when the engine
// accepted a new head. A false engine result is not an error — it is
// reported as (false, nil).
func Tick(ctx context.Context, deps Deps, rpcTimeout time.Duration) (bool, error) {
	lock := flock.New(deps.LockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return false, err
	}
	if !locked {
		return false, ErrLockBusy
	}
	defer lock.Unlock()

	head, err := deps.Heads.Get(ctx)
	if err != nil {
		return false, err
	}

	producers, err := deps.Producers.Get(ctx, head.InnerLite.EpochID)
	if err != nil && !errors.Is(err, collab.ErrNotFound) {
		return false, err
	}
	nextProducers, err := deps.Producers.Get(ctx, head.InnerLite.NextEpochID)
	if err != nil && !errors.Is(err, collab.ErrNotFound) {
		return false, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, rpcTimeout)
	defer cancel()
	candidate, err := deps.Source.FetchNext(fetchCtx, head)
	if err != nil {
		return false, err
	}
	if candidate == nil {
		// Source has nothing newer than head; not an error.
		return false, nil
	}

	state := lightclient.Bootstrap(head)
	activeProducers := producers
	if candidate.InnerLite.EpochID.Equal(head.InnerLite.NextEpochID) {
		activeProducers = nextProducers
	}

	if !lightclient.ValidateAndUpdateHead(state, candidate, activeProducers) {
		return false, nil
	}

	if err := deps.Heads.Put(ctx, state.Head); err != nil {
		return false, err
	}
	update := collab.Update{Head: &state.Head}
	if state.NextBPs != nil {
		if err := deps.Producers.Put(ctx, state.NextBPs.EpochID, state.NextBPs.Producers); err != nil {
			return false, err
		}
		update.ProducerSet = &collab.ProducerSetUpdate{
			EpochID:   state.NextBPs.EpochID,
			Producers: state.NextBPs.Producers,
		}
	}
	if deps.Submitter != nil {
		if err := deps.Submitter.Submit(ctx, update); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Run loops Tick on opts.TickInterval until ctx is cancelled, logging
// each pass's outcome and continuing past collaborator errors so a
// transient network failure doesn't end the process — the worker
// retries on the next tick, per spec.md §7's BootstrapFailure /
// NetworkError handling.
func Run(ctx context.Context, deps Deps, opts config.WorkerOptions) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		advanced, err := Tick(ctx, deps, opts.RPCTimeout)
		switch {
		case err != nil:
			logging.Log.WithError(err).Warn("worker tick failed")
		case advanced:
			logging.Log.Info("advanced trusted head")
		default:
			logging.Log.Debug("no new candidate block")
		}

		Time.Sleep(opts.TickInterval)
	}
}
