package cli

import (
	"strings"

	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/sweep"
	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// options holds the validated settings for the running command.
var options workflow.Options

var rootCommand = &cobra.Command{
	Use:     "groupsweep-go",
	Aliases: []string{"groupsweep"},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Allow 'version' (and 'help') to run without provider settings
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		opts, err := loadOptions()
		if err != nil {
			return err
		}
		options = opts
		return nil
	},
	SilenceUsage: true,
	Short:        "GroupSweep: bulk deletion of a cloud resource group",
	Long: `GroupSweep deletes every compute instance in a resource group and then every
capacity allocation (volumes) that backed them, in small concurrent batches.
Requests rejected by the provider rate limit are retried with exponential backoff.

Resources are matched by the resource group metadata key (OpenStack) or label (Hetzner Cloud).`,
}

func Execute() error {
	return rootCommand.Execute()
}

// loadOptions decodes flags and GROUPSWEEP_* environment variables into workflow options.
func loadOptions() (workflow.Options, error) {
	opts, err := workflow.DecodeOptions(viper.AllSettings())
	if err != nil {
		return workflow.Options{}, err
	}
	return opts, opts.Validate()
}

func init() {
	rootCommand.AddGroup(&cobra.Group{ID: "groupsweep", Title: "GroupSweep"})

	defaults := sweep.DefaultConfig()
	flags := rootCommand.PersistentFlags()

	// Global Persistent Flags with env vars support
	flags.String("provider", workflow.ProviderOpenStack, "Cloud provider (openstack, hetzner)")
	flags.String("cloud", "", "Name of the cloud profile as in clouds.yaml (required for openstack)")
	flags.String("resource-group", "", "Name of the resource group to delete (required)")
	flags.String("group-key", "", "Metadata key (openstack) or label (hetzner) holding the group name")
	flags.Int("timeout", 0, "Global execution timeout in seconds (0 = run indefinitely)")
	flags.String("log-level", "info", "Logging level (debug, info, warn, error)")
	flags.Bool("dry-run", false, "List the resources that would be deleted without deleting them")

	flags.Int("max-retries", defaults.MaxRetries, "Attempts per resource while the provider rate limit is hit")
	flags.Duration("initial-delay", defaults.InitialDelay, "Wait before the first retry, doubled on every further retry")
	flags.Int("batch-size", defaults.BatchSize, "Number of resources deleted concurrently")

	flags.String("pushgateway-url", "", "Prometheus Pushgateway URL for run metrics")
	flags.String("webhook-url", "", "Webhook URL for alerting")
	flags.String("webhook-username", "", "Webhook username for alerting")
	flags.String("webhook-password", "", "Webhook password for alerting")

	// Bind to env vars
	_ = viper.BindPFlags(flags)
	_ = viper.BindEnv("hcloud-token", "GROUPSWEEP_HCLOUD_TOKEN", "HCLOUD_TOKEN")

	viper.SetEnvPrefix("GROUPSWEEP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
