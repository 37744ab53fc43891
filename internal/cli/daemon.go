package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/metrics"
	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/workflow"
	"github.com/go-co-op/gocron-ui/server"
	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var daemonCommand = &cobra.Command{
	Use:     "daemon",
	Short:   "Run GroupSweep in daemon mode",
	GroupID: "groupsweep",
	Long: `Starts GroupSweep as a long running service that sweeps the resource group on a cron schedule.
Prometheus metrics are served on /metrics next to the scheduler dashboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schedule := viper.GetString("schedule")
		bindAddress := viper.GetString("bind-address")

		banner := fmt.Sprintf("GroupSweep - Daemon Mode \n\nVersion: %s\nBuild Date: %s", GroupsweepVersion, GroupsweepDate)
		fmt.Println(headerStyle.Render(banner))

		dlog := workflow.SetupLogger(options.LogLevel, options.CloudProfile).With("component", "daemon")
		recorder := metrics.NewRecorder()

		s, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}

		// Declared first so the task can report its own next run
		var sweepJob gocron.Job

		sweepJob, err = s.NewJob(
			gocron.CronJob(schedule, false),
			gocron.NewTask(func() {
				if err := workflow.RunResourceGroupSweep(options, recorder); err != nil {
					dlog.Error("Resource group sweep failed", "error", err)
				}

				if sweepJob != nil {
					if nextRun, err := sweepJob.NextRun(); err == nil {
						dlog.Info("Sweep workflow completed",
							"next_run", nextRun.Format(time.RFC3339),
							"job_id", sweepJob.ID())
					}
				}
			}),
			gocron.WithName(fmt.Sprintf("Sweep %s", options.ResourceGroup)),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("invalid schedule %q: %w", schedule, err)
		}

		s.Start()
		dlog.Info("Scheduler started", "resource_group", options.ResourceGroup)

		if nextRun, err := sweepJob.NextRun(); err == nil {
			dlog.Info("Job Scheduled",
				"job_name", sweepJob.Name(),
				"job_id", sweepJob.ID(),
				"schedule", schedule,
				"next_run", nextRun.Format(time.RFC3339))
		}

		port, err := dashboardPort(bindAddress)
		if err != nil {
			_ = s.Shutdown()
			return err
		}
		ui := server.NewServer(s, port, server.WithTitle("GroupSweep - Dashboard"))

		mux := http.NewServeMux()
		mux.Handle("/metrics", recorder.Handler())
		mux.Handle("/", ui.Router)

		httpServer := &http.Server{
			Addr:              bindAddress,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErr := make(chan error, 1)
		go func() {
			dlog.Info("GroupSweep UI and metrics server started", "address", bindAddress)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		// Block until a signal arrives or the server dies
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigChan:
			dlog.Warn("Shutting down scheduler due to system signal...")
		case err := <-serverErr:
			dlog.Error("Failed to start UI server", "error", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			dlog.Warn("UI server shutdown incomplete", "error", err)
		}
		return s.Shutdown()
	},
}

// dashboardPort extracts the port of the address the UI is served on.
func dashboardPort(bindAddress string) (int, error) {
	_, portStr, err := net.SplitHostPort(bindAddress)
	if err != nil {
		return 0, fmt.Errorf("invalid bind address %q: %w", bindAddress, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port in bind address %q", bindAddress)
	}
	return port, nil
}

func init() {
	rootCommand.AddCommand(daemonCommand)
	daemonCommand.Flags().String("schedule", "0 * * * *", "Cron schedule for the resource group sweep")
	daemonCommand.Flags().String("bind-address", "0.0.0.0:8080", "Address to bind the UI and metrics server")
	_ = viper.BindPFlags(daemonCommand.Flags())
}
