package models

import (
	"errors"
	"testing"
)

func TestCapability_Valid(t *testing.T) {
	tests := []struct {
		name string
		cap  Capability
		want bool
	}{
		{"architecture is valid", CapabilityArchitecture, true},
		{"code writing is valid", CapabilityCodeWriting, true},
		{"review is valid", CapabilityReview, true},
		{"empty string is invalid", Capability(""), false},
		{"lowercase is invalid", Capability("testing"), false},
		{"unknown is invalid", Capability("Deployment"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cap.Valid(); got != tt.want {
				t.Errorf("Capability(%q).Valid() = %v, want %v", tt.cap, got, tt.want)
			}
		})
	}
}

func TestCapability_DescriptionCoversAll(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range AllCapabilities {
		desc := c.Description()
		if desc == "" || desc == string(c) {
			t.Errorf("capability %s has no description", c)
		}
		if seen[desc] {
			t.Errorf("duplicate description %q", desc)
		}
		seen[desc] = true

		if c.Emoji() == "•" {
			t.Errorf("capability %s has no emoji", c)
		}
	}
}

func TestParseCapability(t *testing.T) {
	for _, c := range AllCapabilities {
		got, err := ParseCapability(string(c))
		if err != nil {
			t.Fatalf("ParseCapability(%q) error: %v", c, err)
		}
		if got != c {
			t.Errorf("ParseCapability(%q) = %q", c, got)
		}
	}

	for _, in := range []string{"testing", "CODEWRITING", " Security "} {
		if _, err := ParseCapability(in); err != nil {
			t.Errorf("ParseCapability(%q) error: %v", in, err)
		}
	}
	if got, _ := ParseCapability("codewriting"); got != CapabilityCodeWriting {
		t.Errorf("ParseCapability(codewriting) = %q", got)
	}

	if _, err := ParseCapability("Wizardry"); !errors.Is(err, ErrUnknownCapability) {
		t.Errorf("expected ErrUnknownCapability, got %v", err)
	}
}
