package notifications

import "time"

type Webhook struct {
	URL      string
	Username string
	Password string
}

// Enabled reports whether a webhook URL was configured.
func (w Webhook) Enabled() bool {
	return w.URL != ""
}

// SweepFailure is posted when a sweep stops on a terminal delete error.
type SweepFailure struct {
	Service       string    `json:"service"`
	RunID         string    `json:"run_id"`
	Provider      string    `json:"provider"`
	CloudProfile  string    `json:"cloud_profile,omitempty"`
	ResourceGroup string    `json:"resource_group"`
	Message       string    `json:"message"`
	FailedAt      time.Time `json:"failed_at"`
}
