package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stackreel/internal/api"
	"stackreel/internal/logging"
	"stackreel/internal/metrics"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and render worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Paths.APIBind = bind
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx := cmd.Context()
			if n, err := store.MarkInterrupted(runCtx); err != nil {
				logging.WarnWithContext(logger, "could not mark interrupted renders", "history_recovery_failed",
					logging.Error(err),
				)
			} else if n > 0 {
				logger.Info("marked interrupted renders as failed", logging.Int64("count", n))
			}

			m := metrics.New()
			runner, err := ctx.newRunner(store, m)
			if err != nil {
				return err
			}
			srv := api.NewServer(cfg, runner, store, m, logger)
			if err := srv.Start(runCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", srv.Addr())

			<-runCtx.Done()
			srv.Wait()
			logger.Info("api server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override paths.api_bind")
	return cmd
}
