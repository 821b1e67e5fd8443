package connections_test

import (
	"testing"

	"github.com/aura-events/networking/internal/connections"
	"github.com/aura-events/networking/internal/models"
)

func TestIsTransitionAllowed(t *testing.T) {
	tests := []struct {
		from, to models.RequestStatus
		want     bool
	}{
		{models.RequestStatusPending, models.RequestStatusAccepted, true},
		{models.RequestStatusPending, models.RequestStatusDeclined, true},
		{models.RequestStatusPending, models.RequestStatusWithdrawn, true},
		{models.RequestStatusPending, models.RequestStatusCancelled, true},
		{models.RequestStatusAccepted, models.RequestStatusDeclined, false},
		{models.RequestStatusDeclined, models.RequestStatusAccepted, false},
		{models.RequestStatusWithdrawn, models.RequestStatusPending, false},
		{models.RequestStatusCancelled, models.RequestStatusAccepted, false},
	}
	for _, tt := range tests {
		if got := connections.IsTransitionAllowed(tt.from, tt.to); got != tt.want {
			t.Errorf("IsTransitionAllowed(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []models.RequestStatus{
		models.RequestStatusAccepted, models.RequestStatusDeclined,
		models.RequestStatusWithdrawn, models.RequestStatusCancelled,
	} {
		if !connections.IsTerminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	if connections.IsTerminal(models.RequestStatusPending) {
		t.Error("pending should not be terminal")
	}
}

func TestParseBox(t *testing.T) {
	tests := []struct {
		in      string
		want    connections.Box
		wantErr bool
	}{
		{"", connections.BoxReceived, false},
		{"received", connections.BoxReceived, false},
		{"sent", connections.BoxSent, false},
		{"all", connections.BoxAll, false},
		{"archived", "", true},
	}
	for _, tt := range tests {
		got, err := connections.ParseBox(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseBox(%q) = %q, %v", tt.in, got, err)
		}
	}
}
