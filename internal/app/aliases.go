package service

// careerAliases maps career ids that share trend data onto the id the data
// is stored under.
var careerAliases = map[string]string{
	"junior-dev":        "software-engineer",
	"mid-dev":           "software-engineer",
	"senior-dev":        "software-engineer",
	"tech-lead":         "software-engineer",
	"global-junior-dev": "software-engineer",
	"global-mid-dev":    "software-engineer",
	"data-analyst":      "data-scientist",
}

// CanonicalCareerID resolves known aliases; other ids pass through.
func CanonicalCareerID(careerID string) string {
	if canonical, ok := careerAliases[careerID]; ok {
		return canonical
	}
	return careerID
}
