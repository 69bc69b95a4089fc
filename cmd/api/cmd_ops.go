package main

import (
	"fmt"

	"campus-market/internal/metrics"
	"campus-market/internal/model"
	"campus-market/internal/outbox"
	"campus-market/internal/realtime"

	"github.com/spf13/cobra"
)

var includeFailed bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Deliver every pending outbox notification and exit",
	Long: `reconcile drains the notification outbox once. With --include-failed,
notifications that exhausted their attempts are requeued first.

Realtime notices are relayed through redis when it is enabled. Without it
they are broadcast to this process only, which has no listeners.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		repos := a.repositories()

		if includeFailed {
			n, err := repos.notifications.RequeueFailed(ctx)
			if err != nil {
				return err
			}
			a.logger.Info().Int64("requeued", n).Msg("failed notifications requeued")
		}

		rdb, err := a.redisClient(ctx)
		if err != nil {
			return err
		}

		var (
			registry realtime.SessionRegistry = realtime.NewLocalRegistry()
			bus      realtime.Bus
		)
		if rdb != nil {
			defer rdb.Close()
			registry = realtime.NewRedisRegistry(rdb, a.cfg.Redis.SessionTTL)
			bus = realtime.NewRedisBus(rdb, a.logger)
		}
		hub := realtime.NewHub(a.cfg.Server.InstanceID+"-reconcile", registry, a.logger)
		notifier := realtime.NewNotifier(hub, registry, bus, a.logger)

		dispatcher := outbox.NewDispatcher(repos.notifications, a.mailSender(), notifier, a.cfg.Outbox, metrics.New(), a.logger)
		res, err := dispatcher.Drain(ctx)
		if err != nil {
			return fmt.Errorf("failed to drain outbox: %w", err)
		}

		counts, err := repos.notifications.CountByStatus(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "claimed=%d sent=%d retried=%d failed=%d\n", res.Claimed, res.Sent, res.Retried, res.Failed)
		fmt.Fprintf(out, "outbox: pending=%d sent=%d failed=%d\n",
			counts[model.NotificationPending], counts[model.NotificationSent], counts[model.NotificationFailed])
		return nil
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity to the database and redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()

		var dbName, version string
		if err := a.pool.QueryRow(ctx, "SELECT current_database(), version()").Scan(&dbName, &version); err != nil {
			return fmt.Errorf("database query failed: %w", err)
		}
		fmt.Fprintf(out, "database: connected to %s (%s)\n", dbName, version)

		rdb, err := a.redisClient(ctx)
		if err != nil {
			return err
		}
		if rdb == nil {
			fmt.Fprintln(out, "redis: disabled")
			return nil
		}
		defer rdb.Close()
		fmt.Fprintf(out, "redis: connected to %s\n", a.cfg.Redis.Addr)
		return nil
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&includeFailed, "include-failed", false, "requeue notifications that exhausted their attempts")
}
