package extract

import (
	"regexp"
	"strings"

	"agentsite-backend/lib/textutil"
)

var officeNameRegex = regexp.MustCompile(`Coldwell Banker Realty\s*[-–—]\s*([A-Za-z][A-Za-z .]{1,40})`)

// captures that are grammar accidents, not locations
var officeNameDenylist = []string{"license", "licensed", "agent", "realtor", "office", "team"}

const companyName = "Coldwell Banker Realty"

func extractOfficeName(document string) (string, []string) {
	return runChain("office name", []Strategy{
		{
			Name: "branded location phrase",
			Run: func() (string, string) {
				for _, groups := range officeNameRegex.FindAllStringSubmatch(document, -1) {
					location := textutil.CollapseWhitespace(groups[1])
					if textutil.MatchName(location, officeNameDenylist) {
						continue
					}
					return companyName + " - " + location, ""
				}
				return "", ""
			},
		},
		{
			Name: "bare company name",
			Run: func() (string, string) {
				if strings.Contains(document, companyName) {
					return companyName, ""
				}
				if strings.Contains(document, "Coldwell Banker") {
					return "Coldwell Banker", ""
				}
				return "", ""
			},
		},
	})
}

var markdownLinkRegex = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
var zipRegex = regexp.MustCompile(`\b\d{5}\b`)

var mappingHosts = []string{"google.com/maps", "goo.gl/maps", "maps.apple.com", "bing.com/maps"}

var streetAddressRegex = regexp.MustCompile(
	`\d+\s+[A-Za-z0-9.#' -]+,?\s+(?:Suite|Ste\.?|Unit|#)?\s*[A-Za-z0-9]*,?\s*[A-Za-z .]+,\s*[A-Z]{2}\s*\d{5}`,
)

var addressLabelRegex = regexp.MustCompile(`(?i)\b(office|location|address)\b[:\s]`)

func extractOfficeAddress(document string) (string, []string) {
	return runChain("office address", []Strategy{
		{
			Name: "mapping service link",
			Run: func() (string, string) {
				for _, groups := range markdownLinkRegex.FindAllStringSubmatch(document, -1) {
					text, target := groups[1], strings.ToLower(groups[2])
					if !zipRegex.MatchString(text) {
						continue
					}
					for _, host := range mappingHosts {
						if strings.Contains(target, host) {
							return textutil.CollapseWhitespace(text), ""
						}
					}
				}
				return "", ""
			},
		},
		{
			Name: "labeled address section",
			Run: func() (string, string) {
				for _, loc := range addressLabelRegex.FindAllStringIndex(document, -1) {
					window := document[loc[1]:]
					if len(window) > 100 {
						window = window[:100]
					}
					if addr := streetAddressRegex.FindString(window); addr != "" {
						return textutil.CollapseWhitespace(addr), ""
					}
				}
				return "", ""
			},
		},
		{
			Name: "unlabeled street address",
			Run: func() (string, string) {
				if addr := streetAddressRegex.FindString(document); addr != "" {
					return textutil.CollapseWhitespace(addr), ""
				}
				return "", ""
			},
		},
	})
}
