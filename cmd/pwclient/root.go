// Command pwclient is a non-core demo entry point exercising the core
// library: socket discovery, a single connect-and-report cycle, and
// optional Prometheus metrics export. Its command tree is built with
// github.com/spf13/cobra the way dsmmcken/dh-cli's dhg command tree is,
// replacing a flat stdlib "flag" package. Startup failures are returned
// from the commands' RunE; main logs the error and exits with status 1.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/m-lab/go/flagx"
	"github.com/spf13/cobra"

	"github.com/udoprog/livemix-go/config"
	"github.com/udoprog/livemix-go/internal/logging"
)

var (
	configPath string
	dotEnvPath string
	promAddr   string
)

// envDefaults is a throwaway stdlib FlagSet used only so
// flagx.ArgsFromEnv (the flag-from-environment idiom m-lab/tcp-info's
// main.go uses; here the PROM variable seeds -prom) can seed defaults before cobra's pflag
// tree takes over; cobra itself never parses against flag.CommandLine.
func envDefaults() string {
	fs := flag.NewFlagSet("pwclient-env-defaults", flag.ContinueOnError)
	prom := fs.String("prom", "", "Prometheus metrics export address and port")
	flagx.ArgsFromEnv(fs)
	return *prom
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pwclient",
		Short:         "Demo client for the livemix-go wire protocol core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pflags := root.PersistentFlags()
	pflags.StringVar(&configPath, "config", "pwclient.toml", "Path to an optional TOML configuration file")
	pflags.StringVar(&dotEnvPath, "dotenv", ".env", "Path to an optional .env file seeding the process environment")
	pflags.StringVar(&promAddr, "prom", envDefaults(), "Prometheus metrics export address (empty disables export)")

	root.AddCommand(newConnectCmd())
	root.AddCommand(newDiscoverCmd())

	return root
}

func loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(dotEnvPath); err != nil {
		return config.Config{}, fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func Execute() error {
	cmd := newRootCmd()
	return cmd.Execute()
}

func main() {
	if err := Execute(); err != nil {
		log := logging.New("cmd")
		log.WithError(err).Error("pwclient exited with an error")
		os.Exit(1)
	}
}
