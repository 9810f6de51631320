// File: cmd/zooassist/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := buildCLI().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	dev        bool
}

func buildCLI() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "zooassist",
		Short:         "Zoo keeper voice notes: transcription, extraction and reports",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "config.yaml", "path to YAML config file")
	root.PersistentFlags().BoolVar(&flags.dev, "dev", false, "developer mode (console logs, debug level)")

	root.AddCommand(buildServeCommand(flags))
	root.AddCommand(buildMigrateCommand(flags))
	root.AddCommand(buildSeedCommand(flags))
	root.AddCommand(buildExtractCommand())
	return root
}
