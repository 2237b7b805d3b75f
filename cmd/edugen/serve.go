package main

import (
	"context"

	"github.com/edugen/edugen/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generation API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address, overrides server.addr")
}

func serve(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	shutdown, err := setupTelemetry(reg, trace)
	if err != nil {
		return err
	}
	defer shutdown(context.Background()) //nolint:errcheck

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	wf, err := a.workflow()
	if err != nil {
		return err
	}
	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := server.New(wf,
		server.WithLogger(a.logger),
		server.WithRegistry(reg),
		server.WithShutdownTimeout(a.cfg.Server.ShutdownTimeout),
	)
	return srv.ListenAndServe(ctx, addr)
}
