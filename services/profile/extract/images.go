package extract

import (
	"regexp"
	"strings"

	"agentsite-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// vendorCdnHost is the brokerage's image CDN; it organizes assets under
// /photos/, /logos/ and /offices/ path segments.
const vendorCdnHost = "cdn.cbhomes.com"

var markdownImageRegex = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)`)
var bareUrlRegex = regexp.MustCompile(`https?://[^\s)"'<>\]\\]+`)
var imageExtRegex = regexp.MustCompile(`(?i)\.(jpe?g|png|webp|gif|svg)(\?[^\s]*)?$`)

// collectImageUrls returns every image URL in discovery order: markdown
// image links first, then markup img tags, then bare URLs that look like
// image files.
func collectImageUrls(markdown string, doc *goquery.Document) []string {
	seen := map[string]bool{}
	var urls []string
	add := func(u string) {
		u = strings.Trim(u, " \t\n")
		if u == "" || !strings.HasPrefix(u, "http") || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}

	for _, groups := range markdownImageRegex.FindAllStringSubmatch(markdown, -1) {
		add(groups[1])
	}
	if doc != nil {
		doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
			if src, ok := sel.Attr("src"); ok {
				add(src)
			}
		})
	}
	for _, u := range bareUrlRegex.FindAllString(markdown, -1) {
		if imageExtRegex.MatchString(u) {
			add(u)
		}
	}
	return urls
}

// collectAllUrls returns every URL in the markdown plus markup anchors and
// images, discovery order preserved.
func collectAllUrls(markdown string, doc *goquery.Document) []string {
	seen := map[string]bool{}
	var urls []string
	add := func(u string) {
		u = strings.Trim(u, " \t\n")
		if u == "" || !strings.HasPrefix(u, "http") || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}

	for _, u := range bareUrlRegex.FindAllString(markdown, -1) {
		add(u)
	}
	if doc != nil {
		for _, anchor := range htmlutil.GetAnchors(doc.Find("a")) {
			add(anchor.Href)
		}
		doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
			if src, ok := sel.Attr("src"); ok {
				add(src)
			}
		})
	}
	return urls
}

// non-headshot junk that sneaks into every pattern list
var headshotSkipTerms = []string{"icon", "logo", "favicon", "1x1", "placeholder"}

var headshotTerms = []string{"agent", "profile", "photo", "headshot", "portrait"}

func firstSurvivingImage(candidates []string, match func(string) bool) string {
	for _, u := range candidates {
		lower := strings.ToLower(u)
		if !match(lower) {
			continue
		}
		skipped := false
		for _, term := range headshotSkipTerms {
			if strings.Contains(lower, term) {
				skipped = true
				break
			}
		}
		if skipped {
			continue
		}
		return u
	}
	return ""
}

func extractHeadshot(markdown string, doc *goquery.Document) (string, []string) {
	images := collectImageUrls(markdown, doc)

	return runChain("headshot", []Strategy{
		{
			Name: "agent term url",
			Run: func() (string, string) {
				return firstSurvivingImage(images, func(u string) bool {
					for _, term := range headshotTerms {
						if strings.Contains(u, term) {
							return true
						}
					}
					return false
				}), ""
			},
		},
		{
			Name: "vendor cdn photo",
			Run: func() (string, string) {
				return firstSurvivingImage(images, func(u string) bool {
					return strings.Contains(u, vendorCdnHost) && strings.Contains(u, "/photos/")
				}), ""
			},
		},
		{
			Name: "any image",
			Run: func() (string, string) {
				return firstSurvivingImage(images, func(string) bool { return true }), ""
			},
		},
	})
}

var teamHeadingRegex = regexp.MustCompile(`(?im)^#{1,6}.*\b(my team|team|partner|group)\b.*$`)

// generic brokerage marks that must never be reported as a personal or team
// logo. Matched against the lowercased URL.
var genericLogoPatterns = []string{
	"coldwellbanker_logo",
	"coldwellbanker-logo",
	"coldwell_banker_logo",
	"coldwell-banker-logo",
	"cb_logo",
	"cb-logo",
	"cbr_logo",
	"cbr-logo",
	"coldwellbankerlogo",
	"default_logo",
	"default-logo",
	"brokerage_logo",
	"brokerage-logo",
}

func isGenericBrokerageLogo(u string) bool {
	lower := strings.ToLower(u)
	for _, pattern := range genericLogoPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// extractLogos finds a personal/team logo. Acceptance runs first (four
// strategies, first hit stops the chain), THEN the accepted candidate is
// checked against the generic-mark denylist and cleared if it is actually
// the default brokerage logo. A single-pass filter would either over-reject
// legitimate team logos sharing brand vocabulary or under-reject generic
// marks. The second return value is the brokerage logo when the candidate
// turned out to be the generic mark.
func extractLogos(markdown string, doc *goquery.Document) (personal, brokerage string, diags []string) {
	urls := collectAllUrls(markdown, doc)

	candidate, diags := runChain("personal logo", []Strategy{
		{
			Name: "team heading image",
			Run: func() (string, string) {
				loc := teamHeadingRegex.FindStringIndex(markdown)
				if loc == nil {
					return "", ""
				}
				window := markdown[loc[1]:]
				if len(window) > 500 {
					window = window[:500]
				}
				groups := markdownImageRegex.FindStringSubmatch(window)
				if groups == nil {
					return "", ""
				}
				return groups[1], ""
			},
		},
		{
			Name: "logos path",
			Run: func() (string, string) {
				for _, u := range urls {
					if strings.Contains(strings.ToLower(u), "/logos/") {
						return u, ""
					}
				}
				return "", ""
			},
		},
		{
			Name: "vendor cdn logo",
			Run: func() (string, string) {
				for _, u := range urls {
					lower := strings.ToLower(u)
					if strings.Contains(lower, vendorCdnHost) &&
						strings.Contains(lower, "/logos/") &&
						!strings.Contains(lower, "/photos/") &&
						!strings.Contains(lower, "/offices/") {
						return u, ""
					}
				}
				return "", ""
			},
		},
		{
			Name: "company segment logo",
			Run: func() (string, string) {
				for _, u := range urls {
					lower := strings.ToLower(u)
					if (strings.Contains(lower, "coldwell") || strings.Contains(lower, "cbhomes")) &&
						strings.Contains(lower, "logos") {
						return u, ""
					}
				}
				return "", ""
			},
		},
	})

	if candidate != "" && isGenericBrokerageLogo(candidate) {
		diags = append(diags, "personal logo: rejected generic brokerage mark "+candidate)
		return "", candidate, diags
	}
	return candidate, "", diags
}
