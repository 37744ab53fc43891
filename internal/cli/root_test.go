package cli

import (
	"testing"
	"time"

	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/workflow"
	"github.com/spf13/viper"
)

func TestLoadOptions_FromEnvironment(t *testing.T) {
	t.Setenv("GROUPSWEEP_PROVIDER", "hetzner")
	t.Setenv("GROUPSWEEP_RESOURCE_GROUP", "rg-demo")
	t.Setenv("HCLOUD_TOKEN", "token")
	t.Setenv("GROUPSWEEP_BATCH_SIZE", "8")
	t.Setenv("GROUPSWEEP_INITIAL_DELAY", "250ms")

	opts, err := loadOptions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if opts.Provider != workflow.ProviderHetzner {
		t.Errorf("Provider = %q, want %q", opts.Provider, workflow.ProviderHetzner)
	}
	if opts.ResourceGroup != "rg-demo" {
		t.Errorf("ResourceGroup = %q, want rg-demo", opts.ResourceGroup)
	}
	if opts.HCloudToken != "token" {
		t.Errorf("HCloudToken = %q, want token", opts.HCloudToken)
	}
	if opts.Sweep.BatchSize != 8 {
		t.Errorf("BatchSize = %d, want 8", opts.Sweep.BatchSize)
	}
	if opts.Sweep.InitialDelay != 250*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 250ms", opts.Sweep.InitialDelay)
	}
}

func TestLoadOptions_MissingGroup(t *testing.T) {
	t.Setenv("GROUPSWEEP_CLOUD", "prod")
	t.Setenv("GROUPSWEEP_RESOURCE_GROUP", "")

	if _, err := loadOptions(); err == nil {
		t.Error("expected error when no resource group is configured")
	}
}

func TestDaemonFlagsBound(t *testing.T) {
	if got := viper.GetString("schedule"); got != "0 * * * *" {
		t.Errorf("schedule = %q, want default cron", got)
	}
	if got := viper.GetString("bind-address"); got != "0.0.0.0:8080" {
		t.Errorf("bind-address = %q, want 0.0.0.0:8080", got)
	}
}
