package adjust

import "strings"

// TextKind selects the rewrite rules for a narrative field.
type TextKind int

const (
	Insights TextKind = iota
	Outlook
	Impact
)

// String implements fmt.Stringer.
func (k TextKind) String() string {
	switch k {
	case Insights:
		return "insights"
	case Outlook:
		return "outlook"
	case Impact:
		return "impact"
	default:
		return "unknown"
	}
}

// rule replaces the first occurrence of match with the rendered template.
// Templates use {match} and {region}; fallbacks use {base} and {region}.
type rule struct {
	match string
	tmpl  string
}

type ruleset struct {
	rules    []rule
	fallback string
}

var textRules = map[TextKind]ruleset{
	Insights: {
		rules: []rule{
			{match: "growth potential", tmpl: "{match} in {region}"},
			{match: "increasing demand", tmpl: "{match} across {region}"},
		},
		fallback: "{base} - Regional trends in {region} show strong potential.",
	},
	Outlook: {
		rules: []rule{
			{match: "positive outlook", tmpl: "{match} in {region}"},
			{match: "strong future prospects", tmpl: "{match} across {region}"},
		},
		fallback: "{base} - {region} market shows promising growth opportunities.",
	},
	Impact: {
		rules: []rule{
			{match: "industry trends", tmpl: "{match} in {region}"},
		},
		fallback: "{base} - {region} regional market dynamics.",
	},
}

// Rewrite makes text mention regionName. The first matching rule wins and
// only its first occurrence is replaced; if none match the fallback
// sentence is appended.
func Rewrite(text, regionName string, kind TextKind) string {
	rs, ok := textRules[kind]
	if !ok {
		return text
	}
	for _, r := range rs.rules {
		if strings.Contains(text, r.match) {
			rendered := strings.NewReplacer("{match}", r.match, "{region}", regionName).Replace(r.tmpl)
			return strings.Replace(text, r.match, rendered, 1)
		}
	}
	return strings.NewReplacer("{base}", text, "{region}", regionName).Replace(rs.fallback)
}
