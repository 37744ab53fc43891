package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWebhook_Notify(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		username string
		wantErr  bool
	}{
		{name: "Accepted", status: http.StatusOK},
		{name: "Basic Auth", status: http.StatusNoContent, username: "ops"},
		{name: "Server Error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got SweepFailure
			var gotUser string

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q", ct)
				}
				gotUser, _, _ = r.BasicAuth()
				_ = json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			hook := Webhook{URL: srv.URL, Username: tt.username, Password: "secret"}
			failure := SweepFailure{
				Service:       "groupsweep",
				RunID:         "req-1",
				Provider:      "openstack",
				ResourceGroup: "ci",
				Message:       "deleting instance: 403",
				FailedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			}

			err := hook.Notify(context.Background(), failure)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Notify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.ResourceGroup != "ci" || got.RunID != "req-1" {
				t.Errorf("payload = %+v", got)
			}
			if gotUser != tt.username {
				t.Errorf("basic auth user = %q, want %q", gotUser, tt.username)
			}
		})
	}
}

func TestWebhook_Enabled(t *testing.T) {
	if (Webhook{}).Enabled() {
		t.Error("empty webhook should be disabled")
	}
	if !(Webhook{URL: "http://hooks"}).Enabled() {
		t.Error("webhook with URL should be enabled")
	}
}
