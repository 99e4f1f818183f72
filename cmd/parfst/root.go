package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/biggeezerdevelopment/parfst-go/internal/logutil"
)

var rootCmd = &cobra.Command{
	Use:   "parfst",
	Short: "Run data-parallel stack/FST kernels over symbol streams",
	Long: `parfst drives the parallel transducer kernels from the command line:
- transduce: run a grammar's transducer over an input stream.
- resolve:   dump the top-of-stack tape of an input stream.
- bench:     compare the parallel kernels against sequential references.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// envSettings are the runtime knobs shared by all subcommands,
// overridable through PARFST_* variables.
type envSettings struct {
	Lanes   int    `envconfig:"LANES"`
	Logfile string `envconfig:"LOGFILE"`
	Level   string `envconfig:"LOG_LEVEL"`
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

// newRunLogger builds the command logger and tags every record with a
// fresh run id.
func newRunLogger() (*logutil.Logger, int, error) {
	var env envSettings
	if err := envconfig.Process("parfst", &env); err != nil {
		return nil, 0, err
	}

	cfg := logutil.NewConfig()
	if env.Logfile != "" {
		cfg.Logfile = env.Logfile
	}
	if env.Level != "" {
		cfg.Level = env.Level
	}
	log, err := logutil.NewLogger(cfg)
	if err != nil {
		return nil, 0, err
	}
	log.SugaredLogger = log.With("run_id", uuid.New().String())
	return log, env.Lanes, nil
}
