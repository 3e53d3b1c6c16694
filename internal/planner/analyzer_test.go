package planner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ShayCichocki/mastercoder/pkg/models"
)

func TestEstimateComplexity(t *testing.T) {
	a := NewTaskAnalyzer()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty string is base", "", 3},
		{"no keywords is base", "fix typo in README", 3},
		{"high keyword", "refactor the code", 5},
		{"medium keyword", "implement new feature", 4},
		{"multiple requirements", "implement authentication and add tests", 8},
		{"repeated keyword counts once", "refactor refactor refactor", 5},
		{"with marker", "build a page with a form", 5},
		{"and plus with counts once", "cats and dogs with hats and bats", 4},
		{"uppercase does not match", "REFACTOR code", 3},
		{
			"all high keywords cap at ten",
			"refactor migrate redesign architecture authentication oauth security encryption performance optimize scale distributed",
			10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.EstimateComplexity(tt.text); got != tt.want {
				t.Errorf("EstimateComplexity(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestEstimateComplexity_NeverOutOfRange(t *testing.T) {
	a := NewTaskAnalyzer()
	all := strings.Join(append(DefaultComplexityKeywords.High, DefaultComplexityKeywords.Medium...), " and ")
	for _, text := range []string{"", "x", all, strings.Repeat(all, 5)} {
		got := a.EstimateComplexity(text)
		if got < 0 || got > 10 {
			t.Errorf("EstimateComplexity(%q) = %d, out of range", text, got)
		}
	}
}

func TestDetectCapabilities(t *testing.T) {
	a := NewTaskAnalyzer()

	tests := []struct {
		name string
		text string
		want []models.Capability
	}{
		{"empty defaults to code writing", "", []models.Capability{models.CapabilityCodeWriting}},
		{"no match defaults to code writing", "some random task", []models.Capability{models.CapabilityCodeWriting}},
		{"security audit", "perform security audit", []models.Capability{models.CapabilitySecurity}},
		{
			"write tests",
			"write tests for the feature",
			[]models.Capability{models.CapabilityCodeWriting, models.CapabilityTesting},
		},
		{
			"ordered by table not by text",
			"implement authentication with security audit and tests",
			[]models.Capability{models.CapabilityCodeWriting, models.CapabilityTesting, models.CapabilitySecurity},
		},
		{
			"architecture and migration",
			"migrate the database structure",
			[]models.Capability{models.CapabilityArchitecture, models.CapabilityMigration},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.DetectCapabilities(tt.text))
		})
	}
}

func TestDetectCapabilities_Documentation(t *testing.T) {
	caps := NewTaskAnalyzer().DetectCapabilities("write documentation for the API")
	assert.Contains(t, caps, models.CapabilityDocumentation)
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("add a new login page to the web app")
	assert.Equal(t, []string{"login", "page"}, got)

	long := strings.Repeat("word ", 20)
	assert.Len(t, ExtractKeywords(long), 10)

	assert.Empty(t, ExtractKeywords(""))
}

func TestAnalyze_Estimates(t *testing.T) {
	a := NewTaskAnalyzer()

	tests := []struct {
		text      string
		files     int
		tokens    int
		timeRange [2]int
	}{
		{"", 1, 3200, [2]int{2, 5}},
		{"refactor the entire system", 6, 24000, [2]int{5, 15}},
		{"fix one bug", 0, 0, [2]int{2, 5}},
		{"implement authentication and add tests", 8, 41600, [2]int{15, 30}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := a.Analyze(tt.text)
			assert.Equal(t, tt.text, got.TaskDescription)
			assert.Equal(t, tt.files, got.EstimatedFiles, "files")
			assert.Equal(t, tt.tokens, got.EstimatedTokens, "tokens")
			assert.Equal(t, tt.timeRange[0], got.EstimatedTimeMin, "time min")
			assert.Equal(t, tt.timeRange[1], got.EstimatedTimeMax, "time max")
		})
	}
}

func TestAnalyzeNormalized_KeepsOriginalDescription(t *testing.T) {
	a := NewTaskAnalyzer()
	got := a.AnalyzeNormalized("REFACTOR Code")

	assert.Equal(t, "REFACTOR Code", got.TaskDescription)
	assert.Equal(t, 5, got.Complexity)
	assert.Equal(t, []models.Capability{models.CapabilityArchitecture}, got.RequiredCapabilities)
	assert.Equal(t, []string{"refactor", "code"}, got.Keywords)
}
