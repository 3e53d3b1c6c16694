package planner

import (
	"strings"

	"github.com/ShayCichocki/mastercoder/pkg/models"
)

const (
	baseComplexity = 3
	maxComplexity  = 10
	minComplexity  = 0

	tokensPerFile = 2000
	maxKeywords   = 10
)

// TaskAnalyzer scores a task and detects the capabilities it needs.
// It is stateless; the zero value is ready to use.
type TaskAnalyzer struct{}

// NewTaskAnalyzer creates a TaskAnalyzer.
func NewTaskAnalyzer() *TaskAnalyzer {
	return &TaskAnalyzer{}
}

// Analyze produces a TaskAnalysis for text. Keywords are matched against the
// text exactly as given, so "REFACTOR" does not match "refactor". Callers that
// want case-insensitive matching should use AnalyzeNormalized.
func (a *TaskAnalyzer) Analyze(text string) *models.TaskAnalysis {
	return a.analyze(text, text)
}

// AnalyzeNormalized lower-cases text before matching but records the
// original text as the task description.
func (a *TaskAnalyzer) AnalyzeNormalized(text string) *models.TaskAnalysis {
	return a.analyze(text, strings.ToLower(text))
}

func (a *TaskAnalyzer) analyze(description, text string) *models.TaskAnalysis {
	complexity := a.EstimateComplexity(text)
	files := estimateFiles(text, complexity)
	timeMin, timeMax := estimateTime(complexity)

	return &models.TaskAnalysis{
		TaskDescription:      description,
		Complexity:           complexity,
		EstimatedFiles:       files,
		EstimatedTokens:      estimateTokens(complexity, files),
		EstimatedTimeMin:     timeMin,
		EstimatedTimeMax:     timeMax,
		RequiredCapabilities: a.DetectCapabilities(text),
		Keywords:             ExtractKeywords(text),
	}
}

// EstimateComplexity scores text on a 0-10 scale.
// Each keyword counts at most once no matter how often it repeats.
func (a *TaskAnalyzer) EstimateComplexity(text string) int {
	complexity := baseComplexity

	for _, kw := range DefaultComplexityKeywords.High {
		if strings.Contains(text, kw) {
			complexity += 2
		}
	}

	for _, kw := range DefaultComplexityKeywords.Medium {
		if strings.Contains(text, kw) {
			complexity++
		}
	}

	if containsAny(text, DefaultComplexityKeywords.MultiRequirement) {
		complexity++
	}

	return max(minComplexity, min(complexity, maxComplexity))
}

// DetectCapabilities returns the capabilities signalled by text, in the order
// of DefaultCapabilityKeywords. Falls back to CodeWriting when nothing matches.
func (a *TaskAnalyzer) DetectCapabilities(text string) []models.Capability {
	var capabilities []models.Capability
	seen := make(map[models.Capability]bool)

	for _, entry := range DefaultCapabilityKeywords {
		if seen[entry.Capability] {
			continue
		}
		if containsAny(text, entry.Keywords) {
			capabilities = append(capabilities, entry.Capability)
			seen[entry.Capability] = true
		}
	}

	if len(capabilities) == 0 {
		capabilities = append(capabilities, models.CapabilityCodeWriting)
	}

	return capabilities
}

// ExtractKeywords returns up to ten whitespace-delimited tokens longer than
// three bytes, in their original order.
func ExtractKeywords(text string) []string {
	keywords := make([]string, 0, maxKeywords)
	for _, word := range strings.Fields(text) {
		if len(word) <= 3 {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// estimateFiles is a step function of complexity scaled by scope hints.
func estimateFiles(text string, complexity int) int {
	var base int
	switch {
	case complexity <= 3:
		base = 1
	case complexity <= 6:
		base = 3
	case complexity <= 8:
		base = 8
	default:
		base = 12
	}

	multiplier := 1.0
	switch {
	case containsAny(text, wideScopeHints):
		multiplier = 2.0
	case containsAny(text, narrowScopeHints):
		multiplier = 0.5
	}

	return int(float64(base) * multiplier)
}

func estimateTokens(complexity, files int) int {
	complexityMultiplier := 1.0 + float64(complexity)*0.2
	return int(float64(files*tokensPerFile) * complexityMultiplier)
}

// estimateTime returns a (min, max) range in minutes.
func estimateTime(complexity int) (int, int) {
	switch {
	case complexity <= 3:
		return 2, 5
	case complexity <= 6:
		return 5, 15
	case complexity <= 8:
		return 15, 30
	default:
		return 30, 60
	}
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
