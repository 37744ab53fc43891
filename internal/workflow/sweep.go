package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/cloud"
	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/metrics"
	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/notifications"
	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/sweep"
	"github.com/google/uuid"
)

const serviceName = "groupsweep"

// RunResourceGroupSweep deletes every compute instance and then every
// capacity allocation of one resource group.
//
// Responsibilities:
//  1. Connection: builds and authenticates the configured provider.
//  2. Ordering: the capacity class is only listed once all instances are gone.
//  3. Throughput: each class is deleted in batches through the retry executor.
//  4. Reporting: records the run in recorder (may be nil), pushes to a
//     Pushgateway and posts failures to the webhook when configured.
func RunResourceGroupSweep(opts Options, recorder *metrics.Recorder) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	runID := fmt.Sprintf("req-%s", uuid.New().String())
	logger := SetupLogger(opts.LogLevel, opts.CloudProfile).With(
		"groupsweep_id", runID,
		"provider", opts.Provider,
		"resource_group", opts.ResourceGroup,
	)

	logger.Info("Initializing resource group sweep", "dry_run", opts.DryRun)

	ctx := context.Background()
	if timeout := opts.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
		logger.Debug("Global workflow timeout configured", "timeout_seconds", opts.TimeoutSeconds)
	}

	started := time.Now()

	provider, err := newProvider(ctx, opts, logger)
	if err == nil {
		_, err = sweepResourceGroup(ctx, provider, opts, logger, observerFor(logger, recorder))
	}

	if err != nil {
		logger.Error("Resource group sweep failed", "error", err)
	}

	report(ctx, opts, runID, recorder, started, err, logger)
	return err
}

func observerFor(logger *slog.Logger, recorder *metrics.Recorder) sweep.Observer {
	if recorder == nil {
		return sweep.LogObserver(logger)
	}
	return sweep.Observers(sweep.LogObserver(logger), recorder)
}

// sweepResourceGroup runs one phase per resource class in cloud.SweepOrder.
// In dry-run mode the classes are only listed.
func sweepResourceGroup(ctx context.Context, provider cloud.Provider, opts Options, logger *slog.Logger, observer sweep.Observer, execOpts ...sweep.Option) ([]sweep.PhaseReport, error) {
	group := opts.ResourceGroup

	if opts.DryRun {
		return planResourceGroup(ctx, provider, group, logger)
	}

	exec, err := sweep.NewExecutor(opts.Sweep, append([]sweep.Option{sweep.WithObserver(observer)}, execOpts...)...)
	if err != nil {
		return nil, err
	}

	logger.Info("Deleting resources in resource group",
		"batch_size", opts.Sweep.BatchSize,
		"max_retries", opts.Sweep.MaxRetries,
		"initial_delay", opts.Sweep.InitialDelay)

	phases := make([]sweep.Phase[cloud.Resource], 0, len(cloud.SweepOrder()))
	for _, class := range cloud.SweepOrder() {
		phases = append(phases, sweep.Phase[cloud.Resource]{
			Class: string(class),
			List: func(ctx context.Context) ([]cloud.Resource, error) {
				items, err := provider.ListResources(ctx, class, group)
				if err != nil {
					return nil, err
				}
				logger.Info(fmt.Sprintf("Found %d %s", len(items), class.Plural()), "class", class)
				return items, nil
			},
			Delete: provider.DeleteResource,
			Completed: func(sweep.PhaseReport) {
				logger.Info(fmt.Sprintf("All %s have been removed.", class.Plural()), "class", class)
			},
		})
	}

	reports, err := sweep.RunPhases(ctx, exec, phases...)
	if err != nil {
		failed := cloud.SweepOrder()[len(reports)]
		logger.Error(fmt.Sprintf("Failed to remove %s", failed.Plural()), "class", failed, "error", err)
		return reports, err
	}

	logger.Info("Resource group sweep completed", "summary", summarize(reports))
	return reports, nil
}

// planResourceGroup lists what a sweep would delete without deleting anything.
func planResourceGroup(ctx context.Context, provider cloud.Provider, group string, logger *slog.Logger) ([]sweep.PhaseReport, error) {
	reports := make([]sweep.PhaseReport, 0, len(cloud.SweepOrder()))

	for _, class := range cloud.SweepOrder() {
		items, err := provider.ListResources(ctx, class, group)
		if err != nil {
			return reports, fmt.Errorf("listing %s: %w", class, err)
		}
		for _, item := range items {
			logger.Info("Would remove resource", "class", class, "resource", item.DisplayName())
		}
		reports = append(reports, sweep.PhaseReport{Class: string(class), Count: len(items)})
	}

	logger.Info("Dry run completed, nothing was deleted", "summary", summarize(reports))
	return reports, nil
}

func summarize(reports []sweep.PhaseReport) map[string]int {
	counts := make(map[string]int, len(reports))
	for _, r := range reports {
		counts[r.Class] = r.Count
	}
	return counts
}

// report publishes the run outcome. Failures here are logged, never returned,
// so they cannot mask the sweep result.
func report(ctx context.Context, opts Options, runID string, recorder *metrics.Recorder, started time.Time, sweepErr error, logger *slog.Logger) {
	// The run context may already be expired by the global timeout.
	reportCtx := context.WithoutCancel(ctx)

	if recorder != nil {
		recorder.ObserveRun(opts.ResourceGroup, started, sweepErr)

		if opts.PushgatewayURL != "" {
			if err := recorder.Push(reportCtx, opts.PushgatewayURL, serviceName, opts.ResourceGroup); err != nil {
				logger.Warn("Failed to push metrics", "error", err)
			}
		}
	}

	webhook := opts.Webhook()
	if sweepErr == nil || !webhook.Enabled() {
		return
	}

	message := sweepErr.Error()
	if errors.Is(sweepErr, context.DeadlineExceeded) {
		message = fmt.Sprintf("sweep timed out after %s: %s", opts.Timeout(), message)
	}

	err := webhook.Notify(reportCtx, notifications.SweepFailure{
		Service:       serviceName,
		RunID:         runID,
		Provider:      opts.Provider,
		CloudProfile:  opts.CloudProfile,
		ResourceGroup: opts.ResourceGroup,
		Message:       message,
		FailedAt:      time.Now().UTC(),
	})
	if err != nil {
		logger.Warn("Failed to send failure notification", "error", err)
	}
}
