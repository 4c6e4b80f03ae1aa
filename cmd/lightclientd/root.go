// Binary lightclientd is a cobra command tree for the light client
// worker process: `run` drives the validate-and-update-head loop,
// `bootstrap` seeds the trusted head from an operator-supplied block,
// and `version` reports the build identifier. Structured the way the
// teacher's cmd/root.go lays out its own single-binary command tree.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/near/lightclientd/logging"
)

// Version is overwritten at build time with the output of git-describe,
// the same convention the teacher's common.Version uses.
var Version = "v0.0.0-dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "lightclientd",
	Short: "lightclientd tracks a NEAR light client's trusted head",
	Long: `lightclientd is a standalone worker that fetches, validates,
and persists updates to a NEAR protocol light client's trusted head.`,
}

// Execute runs the root command; called once from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd, runCmd, bootstrapCmd)
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./lightclientd.yaml)")
	rootCmd.PersistentFlags().String("rpc-endpoint", "https://rpc.mainnet.near.org", "NEAR JSON-RPC endpoint")
	rootCmd.PersistentFlags().String("archive-rpc-endpoint", "https://archival-rpc.mainnet.near.org", "NEAR archival JSON-RPC endpoint, reserved for proof RPCs")
	rootCmd.PersistentFlags().String("data-dir", "/var/lib/lightclientd", "data directory for the bbolt store")
	rootCmd.PersistentFlags().String("lock-path", "/var/lib/lightclientd/lightclientd.lock", "advisory lock file path")
	rootCmd.PersistentFlags().String("submit-url", "", "URL to POST validated head/producer updates to")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (logrus level name)")
	rootCmd.PersistentFlags().String("log-file", "", "log file to write to (default: stderr)")
	rootCmd.PersistentFlags().Duration("tick-interval", 0, "worker loop tick interval (0 = use built-in default)")
	rootCmd.PersistentFlags().Duration("rpc-timeout", 0, "per-call RPC timeout (0 = use built-in default)")

	for _, name := range []string{
		"rpc-endpoint", "archive-rpc-endpoint", "data-dir", "lock-path",
		"submit-url", "log-level", "log-file", "tick-interval", "rpc-timeout",
	} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("lightclientd")
	}

	replacer := strings.NewReplacer("-", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.SetEnvPrefix("lightclientd")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	if err := logging.Configure(viper.GetString("log-level"), viper.GetString("log-file")); err != nil {
		logging.Log.WithFields(logrus.Fields{"error": err}).Fatal("invalid log configuration")
	}
}
