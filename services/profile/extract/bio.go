package extract

import (
	"encoding/json"
	"html"
	"regexp"
	"strings"

	"agentsite-backend/lib/htmlutil"
	"agentsite-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// a biography shorter than this is a caption or slogan, not a bio
const minBioLength = 50

// entity types that describe the agent rather than the brokerage or the
// page chrome. Deliberately a small fixed list; broader structured-data
// matching would change which bios are selected.
var bioEntityTypes = map[string]bool{
	"person":          true,
	"agent":           true,
	"realestateagent": true,
	"profilepage":     true,
}

func usableBio(s string) string {
	s = textutil.CollapseWhitespace(s)
	if len(s) < minBioLength {
		return ""
	}
	return s
}

func entityType(entity map[string]any) string {
	switch t := entity["@type"].(type) {
	case string:
		return strings.ToLower(t)
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok {
				return strings.ToLower(s)
			}
		}
	}
	return ""
}

// descriptionFromEntity reads a description directly on the entity or
// nested one level under the conventional wrapper keys.
func descriptionFromEntity(entity map[string]any) string {
	if desc, ok := entity["description"].(string); ok {
		return desc
	}
	for _, key := range []string{"about", "mainEntity"} {
		nested, ok := entity[key].(map[string]any)
		if !ok {
			continue
		}
		if desc, ok := nested["description"].(string); ok {
			return desc
		}
	}
	return ""
}

// bioFromStructuredData parses each embedded metadata block as JSON
// (array or single object) and reads the description off the first
// person/agent/profile-page entity. Malformed blocks are skipped, never
// fatal.
func bioFromStructuredData(doc *goquery.Document) string {
	for _, block := range htmlutil.JsonLdBlocks(doc) {
		var parsed any
		if err := json.Unmarshal([]byte(block), &parsed); err != nil {
			continue
		}

		var entities []any
		switch v := parsed.(type) {
		case []any:
			entities = v
		case map[string]any:
			entities = []any{v}
		default:
			continue
		}

		for _, raw := range entities {
			entity, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if !bioEntityTypes[entityType(entity)] {
				continue
			}
			if bio := usableBio(descriptionFromEntity(entity)); bio != "" {
				return bio
			}
		}
	}
	return ""
}

// clipped-text containers render the full bio in markup even when the page
// visually truncates it
var clippedClassTerms = []string{"clipped", "clamp", "truncate"}

func bioFromRenderedMarkup(doc *goquery.Document) string {
	found := ""
	doc.Find("[class]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		lower := strings.ToLower(class)
		for _, term := range clippedClassTerms {
			if strings.Contains(lower, term) {
				if bio := usableBio(sel.Text()); bio != "" {
					found = bio
					return false
				}
			}
		}
		return true
	})
	if found != "" {
		return found
	}

	doc.Find("h1,h2,h3,h4,h5,h6").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(sel.Text()), "about") {
			return true
		}
		next := sel.NextFiltered("p,div,section")
		if next.Length() == 0 {
			next = sel.Next()
		}
		if bio := usableBio(next.Text()); bio != "" {
			found = bio
			return false
		}
		return true
	})
	return found
}

func bioFromMetaTags(doc *goquery.Document) string {
	content := htmlutil.MetaContent(doc, "og:description", "description", "twitter:description")
	return usableBio(html.UnescapeString(content))
}

var mdImageStripRegex = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
var mdLinkStripRegex = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
var mdEmphasisStripRegex = regexp.MustCompile(`(\*\*|__|\*|_)`)

var bioSectionRegex = regexp.MustCompile(`(?im)^#{1,6}\s*.*\b(about|bio|biography)\b.*$`)
var agentNarrativeRegex = regexp.MustCompile(
	`(?im)^.*\b(specializes in|years of experience|has been (?:serving|helping)|proudly serv\w+|dedicated to helping)\b.*$`,
)

var lowercaseProseRegex = regexp.MustCompile(`\b[a-z]{3,}\b`)

func plainMarkdown(markdown string) string {
	text := mdImageStripRegex.ReplaceAllString(markdown, "")
	text = mdLinkStripRegex.ReplaceAllString(text, "$1")
	text = mdEmphasisStripRegex.ReplaceAllString(text, "")
	return text
}

func firstParagraphAfter(text string, offset int) string {
	for _, paragraph := range strings.Split(text[offset:], "\n\n") {
		bio := usableBio(paragraph)
		if bio != "" && !strings.HasPrefix(strings.TrimLeft(paragraph, " \t\n"), "#") {
			return bio
		}
	}
	return ""
}

func bioFromMarkdown(markdown string) string {
	text := plainMarkdown(markdown)

	if loc := bioSectionRegex.FindStringIndex(text); loc != nil {
		if bio := firstParagraphAfter(text, loc[1]); bio != "" {
			return bio
		}
	}
	if groups := agentNarrativeRegex.FindString(text); groups != "" {
		if bio := usableBio(groups); bio != "" {
			return bio
		}
	}

	// last resort: the first long prose paragraph
	for _, paragraph := range strings.Split(text, "\n\n") {
		trimmed := strings.Trim(paragraph, " \t\n")
		if len(trimmed) <= 100 {
			continue
		}
		if strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, "|") ||
			strings.HasPrefix(trimmed, "http") {
			continue
		}
		if !lowercaseProseRegex.MatchString(trimmed) {
			continue
		}
		return textutil.CollapseWhitespace(trimmed)
	}
	return ""
}

// extractBiography consults four sources in strict priority order, each only
// when the previous produced nothing usable. The winning source is recorded
// for extraction-drift debugging.
func extractBiography(markdown string, doc *goquery.Document) (string, BiographySource) {
	if doc != nil {
		if bio := bioFromStructuredData(doc); bio != "" {
			return bio, BioSourceStructuredData
		}
		if bio := bioFromRenderedMarkup(doc); bio != "" {
			return bio, BioSourceRenderedMarkup
		}
		if bio := bioFromMetaTags(doc); bio != "" {
			return bio, BioSourceMetaTag
		}
	}
	if bio := bioFromMarkdown(markdown); bio != "" {
		return bio, BioSourceMarkdown
	}
	return "", BioSourceNone
}
