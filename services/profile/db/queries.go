package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Profile struct {
	SourceUrl        string
	WebsiteSlug      string
	WebsitePublished bool
	PasswordHash     string
	FullName         string
	Email            string
	MobilePhone      string
	OfficePhone      string
	AllPhones        string
	HeadshotUrl      string
	PersonalLogoUrl  string
	BrokerageLogoUrl string
	Biography        string
	BiographySource  string
	OfficeName       string
	OfficeAddress    string
	SocialLinks      string
	CreatedAt        int64
	UpdatedAt        int64
}

const getProfile = `
SELECT source_url, website_slug, website_published, password_hash,
       full_name, email, mobile_phone, office_phone, all_phones,
       headshot_url, personal_logo_url, brokerage_logo_url,
       biography, biography_source, office_name, office_address,
       social_links, created_at, updated_at
FROM profiles WHERE source_url = ?
`

func (q *Queries) GetProfile(ctx context.Context, sourceUrl string) (Profile, error) {
	row := q.db.QueryRowContext(ctx, getProfile, sourceUrl)
	var p Profile
	err := row.Scan(
		&p.SourceUrl, &p.WebsiteSlug, &p.WebsitePublished, &p.PasswordHash,
		&p.FullName, &p.Email, &p.MobilePhone, &p.OfficePhone, &p.AllPhones,
		&p.HeadshotUrl, &p.PersonalLogoUrl, &p.BrokerageLogoUrl,
		&p.Biography, &p.BiographySource, &p.OfficeName, &p.OfficeAddress,
		&p.SocialLinks, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

const slugTaken = `
SELECT COUNT(*) FROM profiles WHERE website_slug = ? AND source_url != ?
`

func (q *Queries) SlugTaken(ctx context.Context, websiteSlug, sourceUrl string) (bool, error) {
	row := q.db.QueryRowContext(ctx, slugTaken, websiteSlug, sourceUrl)
	var count int64
	err := row.Scan(&count)
	return count > 0, err
}

type UpsertProfileParams struct {
	SourceUrl        string
	WebsiteSlug      string
	FullName         string
	Email            string
	MobilePhone      string
	OfficePhone      string
	AllPhones        string
	HeadshotUrl      string
	PersonalLogoUrl  string
	BrokerageLogoUrl string
	Biography        string
	BiographySource  string
	OfficeName       string
	OfficeAddress    string
	SocialLinks      string
	Now              int64
}

// upsertProfile is a single conditional statement so that two concurrent
// extractions of the same url cannot each read a stale "existing" snapshot
// and undo the other's slug or email preservation: the slug is never
// replaced once set and a differing stored email survives the update.
// Operator-owned columns (website_published, password_hash) are untouched.
const upsertProfile = `
INSERT INTO profiles (
    source_url, website_slug,
    full_name, email, mobile_phone, office_phone, all_phones,
    headshot_url, personal_logo_url, brokerage_logo_url,
    biography, biography_source, office_name, office_address, social_links,
    created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (source_url) DO UPDATE SET
    website_slug = profiles.website_slug,
    full_name = excluded.full_name,
    email = CASE
        WHEN profiles.email != '' AND profiles.email != excluded.email
        THEN profiles.email
        ELSE excluded.email
    END,
    mobile_phone = excluded.mobile_phone,
    office_phone = excluded.office_phone,
    all_phones = excluded.all_phones,
    headshot_url = excluded.headshot_url,
    personal_logo_url = excluded.personal_logo_url,
    brokerage_logo_url = excluded.brokerage_logo_url,
    biography = excluded.biography,
    biography_source = excluded.biography_source,
    office_name = excluded.office_name,
    office_address = excluded.office_address,
    social_links = excluded.social_links,
    updated_at = excluded.updated_at
`

func (q *Queries) UpsertProfile(ctx context.Context, params UpsertProfileParams) error {
	_, err := q.db.ExecContext(ctx, upsertProfile,
		params.SourceUrl, params.WebsiteSlug,
		params.FullName, params.Email, params.MobilePhone, params.OfficePhone, params.AllPhones,
		params.HeadshotUrl, params.PersonalLogoUrl, params.BrokerageLogoUrl,
		params.Biography, params.BiographySource, params.OfficeName, params.OfficeAddress,
		params.SocialLinks,
		params.Now, params.Now,
	)
	return err
}

const listProfiles = `
SELECT source_url, website_slug, full_name, email, updated_at
FROM profiles ORDER BY updated_at DESC
`

type ListProfilesRow struct {
	SourceUrl   string
	WebsiteSlug string
	FullName    string
	Email       string
	UpdatedAt   int64
}

func (q *Queries) ListProfiles(ctx context.Context) ([]ListProfilesRow, error) {
	rows, err := q.db.QueryContext(ctx, listProfiles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ListProfilesRow
	for rows.Next() {
		var r ListProfilesRow
		err := rows.Scan(&r.SourceUrl, &r.WebsiteSlug, &r.FullName, &r.Email, &r.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
