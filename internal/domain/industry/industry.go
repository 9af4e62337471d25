// Package industry maps careers onto the coarse industry classes that pick a
// regional growth multiplier.
package industry

import "strings"

// Class is a broad sector used only to select a growth factor.
type Class string

// Known classes. General is the catch-all and never fails to apply.
const (
	Tech          Class = "tech"
	Healthcare    Class = "healthcare"
	Manufacturing Class = "manufacturing"
	General       Class = "general"
)

// Keyword lists matched against career identifiers, in priority order.
var (
	techCareers = []string{
		"software-engineer", "data-scientist", "ai-engineer", "cloud-engineer",
		"cybersecurity-analyst", "junior-dev", "mid-dev", "senior-dev", "tech-lead",
	}
	healthcareCareers = []string{
		"cna", "lpn", "rn", "nurse", "nurse-manager", "doctor", "physician", "surgeon",
	}
	manufacturingCareers = []string{
		"production-worker", "machine-operator", "quality-control-inspector",
		"manufacturing-engineer", "plant-manager",
	}
)

// Classify returns the industry class for a career id by case-sensitive
// substring match. Tech is tested first, then healthcare, then manufacturing.
func Classify(careerID string) Class {
	switch {
	case containsAny(careerID, techCareers):
		return Tech
	case containsAny(careerID, healthcareCareers):
		return Healthcare
	case containsAny(careerID, manufacturingCareers):
		return Manufacturing
	default:
		return General
	}
}

// ParseClass converts a data-authored tag into a Class.
func ParseClass(s string) (Class, bool) {
	switch c := Class(strings.ToLower(strings.TrimSpace(s))); c {
	case Tech, Healthcare, Manufacturing, General:
		return c, true
	default:
		return "", false
	}
}

// Resolve prefers an explicit tag stored with the career and only falls back
// to keyword matching when the tag is missing or unknown.
func Resolve(tag Class, careerID string) Class {
	if c, ok := ParseClass(string(tag)); ok {
		return c
	}
	return Classify(careerID)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
