// Package config holds the process-wide options a running
// lightclientd needs: RPC endpoints, storage paths, and the worker
// loop's timing, the analogue of the teacher's common.Options struct.
package config

import "time"

// Options configures a full lightclientd process: the worker loop plus
// its collaborators.
type Options struct {
	// RPCEndpoint is the NEAR JSON-RPC endpoint polled for
	// next_light_client_block (spec.md §6's mainnet primary endpoint by
	// default).
	RPCEndpoint string `mapstructure:"rpc_endpoint"`

	// ArchiveRPCEndpoint is reserved for future proof RPCs
	// (EXPERIMENTAL_light_client_proof); unused by the current worker.
	ArchiveRPCEndpoint string `mapstructure:"archive_rpc_endpoint"`

	// DataDir holds the bbolt database file.
	DataDir string `mapstructure:"data_dir"`

	// LockPath is the advisory lock file path guarding a worker pass.
	LockPath string `mapstructure:"lock_path"`

	// SubmitURL is where validated updates are POSTed.
	SubmitURL string `mapstructure:"submit_url"`

	// LogLevel is a logrus level name ("debug", "info", "warn", ...).
	LogLevel string `mapstructure:"log_level"`

	// LogFile, if non-empty, redirects structured logs to a file
	// instead of stderr.
	LogFile string `mapstructure:"log_file"`

	WorkerOptions `mapstructure:",squash"`
}

// WorkerOptions is the subset of Options the worker loop itself reads,
// split out so worker.Run can be given just what it needs in tests
// without constructing a full Options.
type WorkerOptions struct {
	// TickInterval is the pause Run takes after every worker pass,
	// whether or not that pass advanced the head.
	TickInterval time.Duration `mapstructure:"tick_interval"`

	// RPCTimeout bounds a single BlockSource.FetchNext call (spec.md
	// §5: "30-second deadline per RPC call").
	RPCTimeout time.Duration `mapstructure:"rpc_timeout"`
}

// Defaults returns an Options populated with the built-in defaults. The
// endpoint, path and log-level values match the root command's flag
// defaults; `run` starts from this value and overrides each field that
// viper supplies (a zero tick-interval or rpc-timeout keeps the value
// set here).
func Defaults() Options {
	return Options{
		RPCEndpoint:        "https://rpc.mainnet.near.org",
		ArchiveRPCEndpoint: "https://archival-rpc.mainnet.near.org",
		DataDir:            "/var/lib/lightclientd",
		LockPath:           "/var/lib/lightclientd/lightclientd.lock",
		LogLevel:           "info",
		WorkerOptions: WorkerOptions{
			TickInterval: 2 * time.Second,
			RPCTimeout:   30 * time.Second,
		},
	}
}
