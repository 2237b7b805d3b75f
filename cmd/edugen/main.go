package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/edugen/edugen"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
	trace      bool
)

var rootCmd = &cobra.Command{
	Use:           "edugen",
	Short:         "Study content generator",
	Long:          `Generates learning goals and practice problems grounded in curriculum achievement standards`,
	Version:       edugen.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "edugen.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file with credentials")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "Print OpenTelemetry spans to stdout")
	rootCmd.AddCommand(serveCmd, askCmd, ingestCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}
