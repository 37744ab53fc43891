package workflow

import (
	"fmt"
	"time"

	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/notifications"
	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/sweep"
	"github.com/go-viper/mapstructure/v2"
)

const (
	ProviderOpenStack = "openstack"
	ProviderHetzner   = "hetzner"
)

// Options is everything a sweep run needs. It is decoded from the flat
// settings map produced by viper (flags, environment).
type Options struct {
	Provider      string `mapstructure:"provider"`
	CloudProfile  string `mapstructure:"cloud"`
	HCloudToken   string `mapstructure:"hcloud-token"`
	ResourceGroup string `mapstructure:"resource-group"`
	// GroupKey is the metadata key (OpenStack) or label (Hetzner) carrying the group name.
	GroupKey string `mapstructure:"group-key"`

	TimeoutSeconds int    `mapstructure:"timeout"`
	LogLevel       string `mapstructure:"log-level"`
	DryRun         bool   `mapstructure:"dry-run"`

	PushgatewayURL  string `mapstructure:"pushgateway-url"`
	WebhookURL      string `mapstructure:"webhook-url"`
	WebhookUsername string `mapstructure:"webhook-username"`
	WebhookPassword string `mapstructure:"webhook-password"`

	Sweep sweep.Config `mapstructure:",squash"`
}

// DecodeOptions builds Options from a settings map, starting from the sweep defaults.
// Durations may be given as strings ("2s") and numbers as strings.
func DecodeOptions(settings map[string]any) (Options, error) {
	opts := Options{
		Provider: ProviderOpenStack,
		LogLevel: "info",
		Sweep:    sweep.DefaultConfig(),
	}

	config := &mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return Options{}, err
	}

	if err := decoder.Decode(settings); err != nil {
		return Options{}, fmt.Errorf("invalid options: %w", err)
	}

	return opts, nil
}

// Validate checks that the options describe a runnable sweep.
func (o Options) Validate() error {
	switch o.Provider {
	case ProviderOpenStack:
		if o.CloudProfile == "" {
			return fmt.Errorf("required flag(s) \"cloud\" not set")
		}
	case ProviderHetzner:
		if o.HCloudToken == "" {
			return fmt.Errorf("hetzner provider requires GROUPSWEEP_HCLOUD_TOKEN or HCLOUD_TOKEN")
		}
	default:
		return fmt.Errorf("unknown provider %q (expected %q or %q)", o.Provider, ProviderOpenStack, ProviderHetzner)
	}

	if o.ResourceGroup == "" {
		return fmt.Errorf("required flag(s) \"resource-group\" not set")
	}
	if o.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must not be negative, got %d", o.TimeoutSeconds)
	}

	return o.Sweep.Validate()
}

// Timeout returns the global run timeout, or zero when the run is unbounded.
func (o Options) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// Webhook returns the failure notifier configured by the options.
func (o Options) Webhook() notifications.Webhook {
	return notifications.Webhook{
		URL:      o.WebhookURL,
		Username: o.WebhookUsername,
		Password: o.WebhookPassword,
	}
}
