package api

import (
	"errors"
	"os"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestNewClient_WithAPIKey(t *testing.T) {
	client, err := NewClient(ClientConfig{
		APIKey: "test-key-123",
		Model:  string(anthropic.ModelClaudeHaiku4_5_20251001),
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if client.Model() != anthropic.ModelClaudeHaiku4_5_20251001 {
		t.Errorf("Model = %q, want %q", client.Model(), anthropic.ModelClaudeHaiku4_5_20251001)
	}
	if client.UsesBedrock() {
		t.Error("UsesBedrock = true, want false")
	}
	if client.Tracker() == nil {
		t.Error("Tracker should not be nil")
	}
}

func TestNewClient_WithEnvVar(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-test-key")

	client, err := NewClient(ClientConfig{})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.Model() != DefaultModel {
		t.Errorf("Default model = %q, want %q", client.Model(), DefaultModel)
	}
}

func TestNewClient_NoAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	os.Unsetenv("ANTHROPIC_API_KEY")

	_, err := NewClient(ClientConfig{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("NewClient error = %v, want ErrMissingAPIKey", err)
	}
}

func TestTranslateModelForBedrock(t *testing.T) {
	tests := []struct {
		in   anthropic.Model
		want anthropic.Model
	}{
		{anthropic.ModelClaudeSonnet4_20250514, "us.anthropic.claude-sonnet-4-20250514-v1:0"},
		{anthropic.ModelClaudeHaiku4_5_20251001, "us.anthropic.claude-haiku-4-5-20251001-v1:0"},
		{"custom-model", "custom-model"},
	}

	for _, tt := range tests {
		if got := TranslateModelForBedrock(tt.in); got != tt.want {
			t.Errorf("TranslateModelForBedrock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenTracker(t *testing.T) {
	tracker := NewTokenTracker()

	tracker.Add(100, 50)
	tracker.Add(200, 100)

	input, output := tracker.Total()
	if input != 300 || output != 150 {
		t.Errorf("Total = (%d, %d), want (300, 150)", input, output)
	}
	if tracker.Calls() != 2 {
		t.Errorf("Calls = %d, want 2", tracker.Calls())
	}
	if got := tracker.String(); got != "300 in / 150 out over 2 calls" {
		t.Errorf("String = %q", got)
	}
}

func TestCompletion_TotalTokens(t *testing.T) {
	c := Completion{InputTokens: 12, OutputTokens: 30}
	if c.TotalTokens() != 42 {
		t.Errorf("TotalTokens = %d, want 42", c.TotalTokens())
	}
}
