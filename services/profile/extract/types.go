package extract

// BiographySource records which strategy produced the biography. Needed to
// debug extraction drift between page layouts, not cosmetic.
type BiographySource string

const (
	BioSourceStructuredData BiographySource = "structured_data"
	BioSourceRenderedMarkup BiographySource = "rendered_markup"
	BioSourceMetaTag        BiographySource = "meta_tag"
	BioSourceMarkdown       BiographySource = "markdown"
	BioSourceNone           BiographySource = "none"
)

// DefaultBrokerageLogoUrl is the fallback brokerage mark. BrokerageLogoUrl
// is never empty: "no team logo" is representable, "no brokerage logo" is not.
const DefaultBrokerageLogoUrl = "https://static.agentsite.dev/assets/coldwell-banker-logo.png"

// SocialPlatforms is the fixed set of platforms looked for on every page.
// Every key appears in Profile.SocialLinks even when no link was found.
var SocialPlatforms = []string{"linkedin", "facebook", "instagram", "twitter", "youtube"}

// Profile is the structured output of one extraction pass. It is never
// mutated after Extract returns it.
type Profile struct {
	SourceUrl string

	FullName  string
	Email     string
	AllEmails []string
	// MobilePhone is the first phone discovered and OfficePhone the second.
	// This is positional, not semantic; see assignPhoneRoles.
	MobilePhone string
	OfficePhone string
	AllPhones   []string

	HeadshotUrl      string
	PersonalLogoUrl  string
	BrokerageLogoUrl string

	Biography       string
	BiographySource BiographySource

	OfficeName    string
	OfficeAddress string

	SocialLinks map[string]string

	Succeeded bool
	Warnings  []string
}
