package commands

import (
	"context"
	"testing"

	"github.com/coherp/demandplan/pkg/application/planning"
)

func TestParseMode(t *testing.T) {
	testCases := []struct {
		name        string
		mode        string
		want        planning.Mode
		expectError string
	}{
		{"product", "product", planning.AllocationMode, ""},
		{"default", "", planning.AllocationMode, ""},
		{"fabric", "fabric", planning.DirectMode, ""},
		{"unknown", "magic", 0, `unsupported mode "magic" (expected product or fabric)`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseMode(tc.mode)
			if tc.expectError != "" {
				if err == nil {
					t.Fatal("Expected an error")
				}
				if err.Error() != tc.expectError {
					t.Errorf("Expected error %q, got %q", tc.expectError, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected mode to parse: %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected mode %v, got %v", tc.want, got)
			}
		})
	}
}

func TestExecute_RequiresDatabaseURL(t *testing.T) {
	command := NewForecastCommand(Config{})
	err := command.Execute(context.Background())
	if err == nil {
		t.Fatal("Expected a missing database url to be rejected")
	}
	if err.Error() != "no database url configured; set DATABASE_URL or pass -dsn" {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestExecute_RejectsBadMode(t *testing.T) {
	command := NewForecastCommand(Config{DatabaseURL: "postgres://localhost/x", Mode: "magic"})
	err := command.Execute(context.Background())
	if err == nil {
		t.Fatal("Expected an unsupported mode to be rejected")
	}
}
