package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/db"
	"leadcapture/formbridge/internal/db/repositories"
	"leadcapture/formbridge/internal/jobs"
	"leadcapture/formbridge/internal/metrics"
)

var retentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Delete submissions older than retention_days once",
	Long: `Retention runs a single sweep of the submission log using the
retention_days setting stored in the database, then exits.`,
	Args: cobra.NoArgs,
	RunE: runRetention,
}

func runRetention(cmd *cobra.Command, args []string) error {
	gdb, err := db.InitPostgresORM(cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}

	cache := common.NewCache(cfg.Redis)
	defer cache.Close()

	settings := common.NewSettingsService(repositories.NewOptionRepository(gdb), cache, cfg)
	job := jobs.NewRetentionJob(
		repositories.NewSubmissionRepository(gdb),
		settings,
		metrics.NewMetricsRegistry(prometheus.NewRegistry()),
		jobs.RetentionInterval,
	)

	deleted, err := job.Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d submissions\n", deleted)
	return nil
}
