package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/near/lightclientd/collab"
	"github.com/near/lightclientd/collab/boltstore"
	"github.com/near/lightclientd/collab/rpcsource"
	"github.com/near/lightclientd/collab/txsubmitter"
	"github.com/near/lightclientd/config"
	"github.com/near/lightclientd/logging"
	"github.com/near/lightclientd/worker"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the worker loop that tracks the trusted head",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := optionsFromViper()
		logging.Log.Debugf("options: %#v", opts)

		store, err := boltstore.Open(opts.DataDir + "/lightclientd.db")
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		var submitter collab.Submitter
		if opts.SubmitURL != "" {
			submitter = txsubmitter.New(opts.SubmitURL)
		}

		deps := worker.Deps{
			Heads:     store,
			Producers: store.ProducerStore(),
			Source:    rpcsource.New(opts.RPCEndpoint),
			Submitter: submitter,
			LockPath:  opts.LockPath,
		}

		ctx, cancel := context.WithCancel(context.Background())
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			logging.Log.Info("received shutdown signal")
			cancel()
		}()

		return worker.Run(ctx, deps, opts.WorkerOptions)
	},
}

func optionsFromViper() config.Options {
	opts := config.Defaults()
	if v := viper.GetString("rpc-endpoint"); v != "" {
		opts.RPCEndpoint = v
	}
	if v := viper.GetString("archive-rpc-endpoint"); v != "" {
		opts.ArchiveRPCEndpoint = v
	}
	if v := viper.GetString("data-dir"); v != "" {
		opts.DataDir = v
	}
	if v := viper.GetString("lock-path"); v != "" {
		opts.LockPath = v
	}
	opts.SubmitURL = viper.GetString("submit-url")
	if v := viper.GetString("log-level"); v != "" {
		opts.LogLevel = v
	}
	opts.LogFile = viper.GetString("log-file")
	if v := viper.GetDuration("tick-interval"); v > 0 {
		opts.TickInterval = v
	}
	if v := viper.GetDuration("rpc-timeout"); v > 0 {
		opts.RPCTimeout = v
	}
	return opts
}
