package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/multifilter/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve filtering over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := server.Config{Addr: c.cfg.Server.Addr, ValidateInput: c.cfg.Server.ValidateInput}
			if addr != "" {
				cfg.Addr = addr
			}

			var executor server.Executor
			pool, err := c.openPool(ctx)
			if err != nil {
				return err
			}
			if pool != nil {
				defer pool.Close()
				executor = c.newExecutor(pool)
			} else {
				c.logger.Warn("no database configured, row queries are disabled")
			}

			mgr, err := c.openSaved()
			if err != nil {
				return err
			}

			return server.New(cfg, executor, mgr, c.operators(), c.logger).Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
