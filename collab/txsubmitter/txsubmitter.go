// Package txsubmitter implements collab.Submitter by POSTing the
// engine's results as JSON to a configurable HTTP endpoint, standing
// in for the hosting chain's real transaction submission path (out of
// scope for this light client per its collaborator boundary).
package txsubmitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/near/lightclientd/collab"
)

// Submitter POSTs collab.Update values to a fixed URL as JSON.
type Submitter struct {
	URL    string
	Client *http.Client
}

// New returns a Submitter posting to url with a default HTTP client.
func New(url string) *Submitter {
	return &Submitter{URL: url, Client: http.DefaultClient}
}

type wireUpdate struct {
	Head        *wireHead        `json:"head,omitempty"`
	ProducerSet *wireProducerSet `json:"producer_set,omitempty"`
}

type wireHead struct {
	Height  uint64 `json:"height"`
	EpochID string `json:"epoch_id"`
}

type wireProducerSet struct {
	EpochID       string `json:"epoch_id"`
	ProducerCount int    `json:"producer_count"`
}

// Submit implements collab.Submitter.
func (s *Submitter) Submit(ctx context.Context, update collab.Update) error {
	if update.Head == nil && update.ProducerSet == nil {
		return nil
	}

	var w wireUpdate
	if update.Head != nil {
		w.Head = &wireHead{
			Height:  update.Head.InnerLite.Height,
			EpochID: update.Head.InnerLite.EpochID.String(),
		}
	}
	if update.ProducerSet != nil {
		w.ProducerSet = &wireProducerSet{
			EpochID:       update.ProducerSet.EpochID.String(),
			ProducerCount: len(update.ProducerSet.Producers),
		}
	}

	encoded, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("txsubmitter: encode update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("txsubmitter: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("txsubmitter: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("txsubmitter: http status %d", resp.StatusCode)
	}
	return nil
}

var _ collab.Submitter = (*Submitter)(nil)
