// Package merge reconciles a freshly extracted profile against the stored
// record for the same source identity. The extracted result is not the
// system of record: a human may have corrected fields since the last run,
// and reconciliation decides what survives. It is a pure function; the
// caller owns the actual write.
package merge

import (
	"fmt"

	"agentsite-backend/lib/textutil"
	"agentsite-backend/services/profile/extract"

	"github.com/antzucaro/matchr"
)

// StoredRecord is the persisted shape, a superset of the extracted profile
// plus operator-owned fields the pipeline must never touch.
type StoredRecord struct {
	SourceUrl string

	WebsiteSlug      string
	WebsitePublished bool
	PasswordHash     string

	FullName         string
	Email            string
	MobilePhone      string
	OfficePhone      string
	AllPhones        []string
	HeadshotUrl      string
	PersonalLogoUrl  string
	BrokerageLogoUrl string
	Biography        string
	BiographySource  string
	OfficeName       string
	OfficeAddress    string
	SocialLinks      map[string]string
}

// FieldOverrides is the record content reconciliation decides on. The
// operator-owned columns of StoredRecord are absent on purpose.
type FieldOverrides struct {
	SourceUrl string

	WebsiteSlug string

	FullName         string
	Email            string
	MobilePhone      string
	OfficePhone      string
	AllPhones        []string
	HeadshotUrl      string
	PersonalLogoUrl  string
	BrokerageLogoUrl string
	Biography        string
	BiographySource  string
	OfficeName       string
	OfficeAddress    string
	SocialLinks      map[string]string
}

// two names more dissimilar than this probably identify different people
const nameDriftThreshold = 0.85

// Reconcile combines a fresh extraction with the existing record, if any.
// Precedence:
//  1. an existing website slug is retained unconditionally, it is a
//     public-facing identifier and must never silently change on re-run
//  2. an existing email that differs from the fresh one is retained: a
//     stored email is treated as likely human-corrected. There is no
//     mechanism to tell "operator corrected this" from "the agent changed
//     emails"; this is a deliberate simplifying assumption.
//  3. a differing phone does NOT trigger preservation, the fresh phone
//     always overwrites. The email/phone asymmetry is carried over from the
//     previous policy as observed behavior; do not "fix" it without product
//     confirmation.
//  4. every other field is last-extraction-wins.
func Reconcile(fresh extract.Profile, existing *StoredRecord) (FieldOverrides, []string) {
	overrides := FieldOverrides{
		SourceUrl:        fresh.SourceUrl,
		WebsiteSlug:      textutil.Slugify(fresh.FullName),
		FullName:         fresh.FullName,
		Email:            fresh.Email,
		MobilePhone:      fresh.MobilePhone,
		OfficePhone:      fresh.OfficePhone,
		AllPhones:        fresh.AllPhones,
		HeadshotUrl:      fresh.HeadshotUrl,
		PersonalLogoUrl:  fresh.PersonalLogoUrl,
		BrokerageLogoUrl: fresh.BrokerageLogoUrl,
		Biography:        fresh.Biography,
		BiographySource:  string(fresh.BiographySource),
		OfficeName:       fresh.OfficeName,
		OfficeAddress:    fresh.OfficeAddress,
		SocialLinks:      fresh.SocialLinks,
	}
	if existing == nil {
		return overrides, nil
	}

	var warnings []string

	if existing.WebsiteSlug != "" {
		overrides.WebsiteSlug = existing.WebsiteSlug
	}
	if existing.Email != "" && fresh.Email != "" && existing.Email != fresh.Email {
		warnings = append(warnings, fmt.Sprintf(
			"stored email %s retained over freshly extracted %s",
			existing.Email, fresh.Email,
		))
	}
	if existing.Email != "" && existing.Email != fresh.Email {
		overrides.Email = existing.Email
	}

	if existing.FullName != "" && fresh.FullName != "" {
		similarity := matchr.JaroWinkler(
			textutil.NormalizeName(existing.FullName),
			textutil.NormalizeName(fresh.FullName),
			false,
		)
		if similarity < nameDriftThreshold {
			warnings = append(warnings, fmt.Sprintf(
				"extracted name %q drifted from stored name %q (similarity %.2f)",
				fresh.FullName, existing.FullName, similarity,
			))
		}
	}

	return overrides, warnings
}
