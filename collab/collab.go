// Package collab declares the interfaces the light client engine's
// caller depends on but the engine itself never touches: fetching
// candidate blocks, persisting the trusted head and producer sets, and
// submitting results back onto the hosting chain. The engine package
// takes none of these as a dependency; a driver (package worker) wires
// concrete implementations together.
package collab

import (
	"context"
	"errors"

	"github.com/near/lightclientd/header"
)

// ErrCapacityOverflow is returned by ProducerStore.Put when the
// supplied producer set exceeds the protocol's 1024-entry bound.
var ErrCapacityOverflow = errors.New("collab: producer set exceeds 1024 entries")

// ErrNotFound is returned by HeadStore.Get and ProducerStore.Get when
// no value has been stored yet for the requested key.
var ErrNotFound = errors.New("collab: not found")

// BlockSource fetches the next candidate light client block extending
// the chain from lastBlockHash's perspective. A call makes a single
// attempt; retrying after a failure is left to the caller (worker.Run
// tries again on its next tick).
type BlockSource interface {
	FetchNext(ctx context.Context, lastBlockHash header.LightClientBlockLiteView) (*header.LightClientBlockView, error)
}

// HeadStore persists the single trusted head.
type HeadStore interface {
	Get(ctx context.Context) (header.LightClientBlockLiteView, error)
	Put(ctx context.Context, head header.LightClientBlockLiteView) error
}

// ProducerStore persists the block-producer set for each epoch the
// engine has validated a transition into.
type ProducerStore interface {
	Get(ctx context.Context, epochID header.EpochID) ([]header.ValidatorStake, error)
	Put(ctx context.Context, epochID header.EpochID, producers []header.ValidatorStake) error
}

// Update is what Submitter relays back onto the hosting chain: a new
// head and, when the validating candidate staged one, a new producer
// set. Either field may be the zero value when nothing changed.
type Update struct {
	Head         *header.LightClientBlockLiteView
	ProducerSet  *ProducerSetUpdate
}

// ProducerSetUpdate pairs a staged producer set with the epoch it
// belongs to, mirroring lightclient.PendingProducers without importing
// package lightclient (collab sits below it in the dependency graph).
type ProducerSetUpdate struct {
	EpochID   header.EpochID
	Producers []header.ValidatorStake
}

// Submitter is the opaque transport a worker uses to write a
// successful validation's results back onto the hosting chain.
type Submitter interface {
	Submit(ctx context.Context, update Update) error
}
