package extract

import (
	"regexp"
	"strings"

	"agentsite-backend/lib/textutil"
)

var headingRegex = regexp.MustCompile(`^#{1,6}\s+(.+)$`)

// qualifier clauses following a comma or dash: role titles, site-name
// suffixes, license blurbs.
var trailingQualifierRegex = regexp.MustCompile(
	`(?i)\s*[,|–—-]\s*(realtor|real estate agent|agent|broker|broker associate|sales associate|coldwell banker.*|realty.*|license.*)\s*$`,
)

var nameWordRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z.'’-]*$`)

var narrativeNameRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?m)\bMeet\s+([A-Z][A-Za-z.'’-]+(?:\s+[A-Z][A-Za-z.'’-]+){1,3})\b`),
	regexp.MustCompile(`(?m)\b([A-Z][A-Za-z.'’-]+(?:\s+[A-Z][A-Za-z.'’-]+){1,3})\s+specializes in\b`),
	regexp.MustCompile(`(?m)\b([A-Z][A-Za-z.'’-]+(?:\s+[A-Z][A-Za-z.'’-]+){1,3})\s+is a (?:licensed )?(?:realtor|real estate agent|broker)\b`),
}

// validFullName accepts 2-5 words that are each letters, apostrophes,
// periods, or hyphens. Slogans, single words, and template artifacts fail.
func validFullName(name string) bool {
	words := strings.Fields(name)
	if len(words) < 2 || len(words) > 5 {
		return false
	}
	for _, w := range words {
		if !nameWordRegex.MatchString(w) {
			return false
		}
	}
	return true
}

// stripNameQualifiers removes site-name suffixes and trailing role clauses
// from a heading before it is judged as a name.
func stripNameQualifiers(heading string) string {
	name := heading
	if idx := strings.Index(name, "|"); idx >= 0 {
		name = name[:idx]
	}
	for {
		stripped := trailingQualifierRegex.ReplaceAllString(name, "")
		if stripped == name {
			break
		}
		name = stripped
	}
	return textutil.CollapseWhitespace(name)
}

func extractName(markdown string) (string, []string) {
	return runChain("full name", []Strategy{
		{
			Name: "markdown heading",
			Run: func() (string, string) {
				for _, line := range strings.Split(markdown, "\n") {
					groups := headingRegex.FindStringSubmatch(strings.TrimRight(line, " \t"))
					if groups == nil {
						continue
					}
					name := stripNameQualifiers(groups[1])
					if validFullName(name) {
						return name, ""
					}
					// only the first heading is considered; later headings
					// are section titles, not the agent
					return "", "heading " + strings.Trim(groups[1], " ")
				}
				return "", ""
			},
		},
		{
			Name: "narrative sentence",
			Run: func() (string, string) {
				for _, re := range narrativeNameRegexes {
					groups := re.FindStringSubmatch(markdown)
					if groups == nil {
						continue
					}
					name := textutil.CollapseWhitespace(groups[1])
					if validFullName(name) {
						return name, ""
					}
				}
				return "", ""
			},
		},
	})
}
