package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/near/lightclientd/collab/boltstore"
	"github.com/near/lightclientd/collab/rpcsource"
	"github.com/near/lightclientd/digest"
	"github.com/near/lightclientd/header"
	"github.com/near/lightclientd/logging"
)

var bootstrapStartBlockHash string

// bootstrapCmd seeds HeadStore and ProducerStore from an
// operator-supplied starting block hash. The light client engine
// performs no authentication of a bootstrap block — whoever runs this
// command is the trust anchor for it, per spec.md §3's Lifecycle.
//
// The starting hash is resolved into a full LightClientBlockView via
// the same next_light_client_block RPC call the worker loop itself
// uses (mirroring the original implementation's fetch_latest_header),
// so that the fetched block's next_bps can be staged as the producer
// set for its next_epoch_id. Without this, the worker's first tick
// would find no producer set for the epoch its first candidate needs
// verifying against, and every candidate would be rejected forever.
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Seed the trusted head from an operator-supplied starting block hash",
	RunE: func(cmd *cobra.Command, args []string) error {
		startHash, err := digest.FromBase58(bootstrapStartBlockHash)
		if err != nil {
			return fmt.Errorf("--start-block-hash: %w", err)
		}

		ctx := context.Background()
		source := rpcsource.New(viper.GetString("rpc-endpoint"))
		view, err := source.FetchByHash(ctx, startHash.ToBase58())
		if err != nil {
			return fmt.Errorf("fetch starting block: %w", err)
		}
		if view == nil {
			return fmt.Errorf("no light client block found for starting hash %s", bootstrapStartBlockHash)
		}

		head := header.LiteViewFromFull(*view)

		dataDir := viper.GetString("data-dir")
		store, err := boltstore.Open(dataDir + "/lightclientd.db")
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		if err := store.Put(ctx, head); err != nil {
			return fmt.Errorf("write bootstrap head: %w", err)
		}

		if len(view.NextBPs) > 0 {
			if err := store.ProducerStore().Put(ctx, head.InnerLite.NextEpochID, view.NextBPs); err != nil {
				return fmt.Errorf("write bootstrap producer set: %w", err)
			}
		}

		logging.Log.WithFields(map[string]interface{}{
			"height":        head.InnerLite.Height,
			"head":          head.Hash().ToBase58(),
			"epoch_id":      head.InnerLite.EpochID.String(),
			"next_epoch_id": head.InnerLite.NextEpochID.String(),
			"next_bps":      len(view.NextBPs),
		}).Info("bootstrapped trusted head")
		return nil
	},
}

func init() {
	bootstrapCmd.Flags().StringVar(&bootstrapStartBlockHash, "start-block-hash", "", "hash of the trusted starting block, resolved via next_light_client_block")
	bootstrapCmd.MarkFlagRequired("start-block-hash")
}
