package worker

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/near/lightclientd/collab"
	"github.com/near/lightclientd/digest"
	"github.com/near/lightclientd/header"
	"github.com/near/lightclientd/sigkit"
)

type fakeHeadStore struct {
	head header.LightClientBlockLiteView
	set  bool
}

func (f *fakeHeadStore) Get(ctx context.Context) (header.LightClientBlockLiteView, error) {
	if !f.set {
		return header.LightClientBlockLiteView{}, collab.ErrNotFound
	}
	return f.head, nil
}

func (f *fakeHeadStore) Put(ctx context.Context, head header.LightClientBlockLiteView) error {
	f.head = head
	f.set = true
	return nil
}

type fakeProducerStore struct {
	byEpoch map[header.EpochID][]header.ValidatorStake
}

func newFakeProducerStore() *fakeProducerStore {
	return &fakeProducerStore{byEpoch: make(map[header.EpochID][]header.ValidatorStake)}
}

func (f *fakeProducerStore) Get(ctx context.Context, epochID header.EpochID) ([]header.ValidatorStake, error) {
	producers, ok := f.byEpoch[epochID]
	if !ok {
		return nil, collab.ErrNotFound
	}
	return producers, nil
}

func (f *fakeProducerStore) Put(ctx context.Context, epochID header.EpochID, producers []header.ValidatorStake) error {
	f.byEpoch[epochID] = producers
	return nil
}

type fakeSource struct {
	view *header.LightClientBlockView
	err  error
}

func (f *fakeSource) FetchNext(ctx context.Context, lastBlockHash header.LightClientBlockLiteView) (*header.LightClientBlockView, error) {
	return f.view, f.err
}

type fakeSubmitter struct {
	updates []collab.Update
}

func (f *fakeSubmitter) Submit(ctx context.Context, update collab.Update) error {
	f.updates = append(f.updates, update)
	return nil
}

func signedCandidate(t *testing.T, prevHead header.LightClientBlockLiteView, height uint64, epochID header.EpochID) (header.LightClientBlockView, header.ValidatorStake) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	producer := header.ValidatorStake{
		AccountID: "v1.near",
		PublicKey: sigkit.PublicKey{Type: sigkit.Ed25519, Data: pub},
		Stake:     big.NewInt(100),
	}
	candidate := header.LightClientBlockView{
		PrevBlockHash:      prevHead.Hash(),
		NextBlockInnerHash: digest.HashBytes([]byte("next-inner")),
		InnerRestHash:      digest.HashBytes([]byte("inner-rest")),
		InnerLite: header.InnerLite{
			Height:      height,
			EpochID:     epochID,
			NextEpochID: prevHead.InnerLite.NextEpochID,
		},
	}
	msg := header.ApprovalMessage(candidate)
	sig := ed25519.Sign(priv, msg)
	candidate.ApprovalsAfterNext = []*sigkit.Signature{{Type: sigkit.Ed25519, Data: sig}}
	return candidate, producer
}

func TestTickAdvancesHeadAndSubmits(t *testing.T) {
	epochA := header.EpochIDFromDigest(digest.HashBytes([]byte("epoch-a")))
	epochB := header.EpochIDFromDigest(digest.HashBytes([]byte("epoch-b")))
	genesisHead := header.LightClientBlockLiteView{
		InnerLite: header.InnerLite{Height: 1, EpochID: epochA, NextEpochID: epochB},
	}
	candidate, producer := signedCandidate(t, genesisHead, 2, epochA)

	heads := &fakeHeadStore{head: genesisHead, set: true}
	producers := newFakeProducerStore()
	producers.byEpoch[epochA] = []header.ValidatorStake{producer}
	source := &fakeSource{view: &candidate}
	submitter := &fakeSubmitter{}

	deps := Deps{
		Heads:     heads,
		Producers: producers,
		Source:    source,
		Submitter: submitter,
		LockPath:  filepath.Join(t.TempDir(), "worker.lock"),
	}

	advanced, err := Tick(context.Background(), deps, time.Second)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !advanced {
		t.Fatalf("expected Tick to report an advance")
	}
	if heads.head.InnerLite.Height != 2 {
		t.Fatalf("stored head height = %d, want 2", heads.head.InnerLite.Height)
	}
	if len(submitter.updates) != 1 {
		t.Fatalf("expected exactly one submission, got %d", len(submitter.updates))
	}
}

func TestTickReturnsFalseWithoutErrorWhenSourceHasNothingNewer(t *testing.T) {
	head := header.LightClientBlockLiteView{InnerLite: header.InnerLite{Height: 1}}
	deps := Deps{
		Heads:     &fakeHeadStore{head: head, set: true},
		Producers: newFakeProducerStore(),
		Source:    &fakeSource{view: nil},
		Submitter: &fakeSubmitter{},
		LockPath:  filepath.Join(t.TempDir(), "worker.lock"),
	}
	advanced, err := Tick(context.Background(), deps, time.Second)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if advanced {
		t.Fatalf("expected no advance")
	}
}

func TestTickPropagatesSourceError(t *testing.T) {
	head := header.LightClientBlockLiteView{InnerLite: header.InnerLite{Height: 1}}
	wantErr := errors.New("network down")
	deps := Deps{
		Heads:     &fakeHeadStore{head: head, set: true},
		Producers: newFakeProducerStore(),
		Source:    &fakeSource{err: wantErr},
		Submitter: &fakeSubmitter{},
		LockPath:  filepath.Join(t.TempDir(), "worker.lock"),
	}
	_, err := Tick(context.Background(), deps, time.Second)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wantErr, got %v", err)
	}
}

func TestTickBootstrapFailureWhenHeadMissing(t *testing.T) {
	deps := Deps{
		Heads:     &fakeHeadStore{},
		Producers: newFakeProducerStore(),
		Source:    &fakeSource{},
		Submitter: &fakeSubmitter{},
		LockPath:  filepath.Join(t.TempDir(), "worker.lock"),
	}
	_, err := Tick(context.Background(), deps, time.Second)
	if !errors.Is(err, collab.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
