package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var platformDomains = map[string][]string{
	"linkedin":  {"linkedin.com"},
	"facebook":  {"facebook.com", "fb.com"},
	"instagram": {"instagram.com"},
	"twitter":   {"twitter.com", "x.com"},
	"youtube":   {"youtube.com", "youtu.be"},
}

// isCorporateSocial reports whether the link points at the brokerage's own
// page rather than the agent's.
func isCorporateSocial(platform, u string) bool {
	lower := strings.ToLower(u)
	if platform == "linkedin" && strings.Contains(lower, "/company/") {
		return true
	}
	return strings.Contains(lower, "coldwellbanker")
}

// extractSocialLinks fills every platform key. For each platform the first
// non-corporate match wins; if every match is a corporate page, the first
// match is used anyway rather than leaving the field empty.
func extractSocialLinks(markdown string, doc *goquery.Document) map[string]string {
	urls := collectAllUrls(markdown, doc)

	links := make(map[string]string, len(SocialPlatforms))
	for _, platform := range SocialPlatforms {
		links[platform] = ""

		var matches []string
		for _, u := range urls {
			lower := strings.ToLower(u)
			for _, domain := range platformDomains[platform] {
				if strings.Contains(lower, domain+"/") || strings.HasSuffix(lower, domain) {
					matches = append(matches, u)
					break
				}
			}
		}
		if len(matches) == 0 {
			continue
		}

		links[platform] = matches[0]
		for _, match := range matches {
			if !isCorporateSocial(platform, match) {
				links[platform] = match
				break
			}
		}
	}
	return links
}
