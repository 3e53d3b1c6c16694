package agent

import (
	"strings"
	"testing"

	"github.com/ShayCichocki/mastercoder/pkg/models"
)

func TestSystemPrompt_EveryCapabilityHasRole(t *testing.T) {
	for _, c := range models.AllCapabilities {
		prompt := SystemPrompt("Test Agent", c)

		if !strings.HasPrefix(prompt, "You are Test Agent, a specialized AI agent with expertise in "+c.Description()+".") {
			t.Errorf("%s: unexpected prompt opening %q", c, prompt)
		}
		if !strings.Contains(prompt, "Your role is to") {
			t.Errorf("%s: prompt is missing role instructions", c)
		}
	}
}

func TestSystemPrompt_UnknownCapability(t *testing.T) {
	prompt := SystemPrompt("Odd", models.Capability("Juggling"))
	want := "You are Odd, a specialized AI agent with expertise in Juggling."
	if prompt != want {
		t.Errorf("SystemPrompt = %q, want %q", prompt, want)
	}
}
