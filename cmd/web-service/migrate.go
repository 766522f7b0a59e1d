package main

import (
	"memberportal/web-service/internal/config"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Load()
			logger := newLogger(cfg)
			st, err := openStores(ctx, cfg, logger, false)
			if err != nil {
				return err
			}
			defer st.close()
			logger.Info(ctx, "migrations applied")
			return nil
		},
	}
}
