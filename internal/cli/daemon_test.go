package cli

import "testing"

func TestDashboardPort(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    int
		wantErr bool
	}{
		{name: "default", address: "0.0.0.0:8080", want: 8080},
		{name: "custom port", address: "127.0.0.1:9090", want: 9090},
		{name: "all interfaces", address: ":9100", want: 9100},
		{name: "ipv6", address: "[::1]:8443", want: 8443},
		{name: "missing port", address: "localhost", wantErr: true},
		{name: "named port", address: "localhost:http", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dashboardPort(tt.address)
			if (err != nil) != tt.wantErr {
				t.Fatalf("dashboardPort(%q) error = %v, wantErr %v", tt.address, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("dashboardPort(%q) = %d, want %d", tt.address, got, tt.want)
			}
		})
	}
}
