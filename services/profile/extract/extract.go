// Package extract turns a fetched profile page (rendered markdown plus raw
// markup) into a structured Profile. Extraction is a pure function of its
// inputs: the same two strings always produce the same Profile. Fields that
// cannot be extracted are left empty and reported through Warnings, never
// through an error.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extract runs every per-field strategy chain over the document. markup may
// be empty; markup-only strategies are skipped in that case.
func Extract(sourceUrl, markdown, markup string) Profile {
	profile := Profile{
		SourceUrl:        sourceUrl,
		BrokerageLogoUrl: DefaultBrokerageLogoUrl,
		BiographySource:  BioSourceNone,
	}

	var doc *goquery.Document
	if markup != "" {
		parsed, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
		if err == nil {
			doc = parsed
		} else {
			profile.Warnings = append(profile.Warnings, "markup unparseable: "+err.Error())
		}
	}

	// regex-driven fields scan the markdown; when only markup is available
	// (direct fetches) they scan its text rendering instead
	document := markdown
	if document == "" && doc != nil {
		document = doc.Text()
	}

	name, diags := extractName(document)
	profile.FullName = name
	profile.Warnings = append(profile.Warnings, diags...)
	if name == "" {
		profile.Warnings = append(profile.Warnings, "no full name found")
	}

	emails, diags := extractEmails(document)
	profile.AllEmails = emails
	profile.Warnings = append(profile.Warnings, diags...)
	if len(emails) > 0 {
		profile.Email = emails[0]
	} else {
		profile.Warnings = append(profile.Warnings, "no email found")
	}

	profile.AllPhones = extractPhones(document)
	profile.MobilePhone, profile.OfficePhone = assignPhoneRoles(profile.AllPhones)
	if len(profile.AllPhones) == 0 {
		profile.Warnings = append(profile.Warnings, "no phone number found")
	}

	headshot, diags := extractHeadshot(markdown, doc)
	profile.HeadshotUrl = headshot
	profile.Warnings = append(profile.Warnings, diags...)
	if headshot == "" {
		profile.Warnings = append(profile.Warnings, "no headshot found")
	}

	personalLogo, brokerageLogo, diags := extractLogos(markdown, doc)
	profile.PersonalLogoUrl = personalLogo
	profile.Warnings = append(profile.Warnings, diags...)
	if brokerageLogo != "" {
		profile.BrokerageLogoUrl = brokerageLogo
	}

	profile.Biography, profile.BiographySource = extractBiography(markdown, doc)
	if profile.Biography == "" {
		profile.Warnings = append(profile.Warnings, "no biography found")
	}

	officeName, diags := extractOfficeName(document)
	profile.OfficeName = officeName
	profile.Warnings = append(profile.Warnings, diags...)
	if officeName == "" {
		profile.Warnings = append(profile.Warnings, "no office name found")
	}

	officeAddress, diags := extractOfficeAddress(document)
	profile.OfficeAddress = officeAddress
	profile.Warnings = append(profile.Warnings, diags...)
	if officeAddress == "" {
		profile.Warnings = append(profile.Warnings, "no office address found")
	}

	profile.SocialLinks = extractSocialLinks(markdown, doc)

	profile.Succeeded = profile.FullName != "" &&
		(profile.Email != "" || len(profile.AllPhones) > 0)

	return profile
}

// FailedShell is the profile handed to callers when the fetch itself failed:
// only the source url is populated.
func FailedShell(sourceUrl, reason string) Profile {
	links := make(map[string]string, len(SocialPlatforms))
	for _, platform := range SocialPlatforms {
		links[platform] = ""
	}
	return Profile{
		SourceUrl:        sourceUrl,
		BrokerageLogoUrl: DefaultBrokerageLogoUrl,
		BiographySource:  BioSourceNone,
		SocialLinks:      links,
		Warnings:         []string{"fetch failed: " + reason},
	}
}
