// Package store persists reconciled profiles. It owns the JSON encoding of
// the list/map columns and keeps website slugs unique across records.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"agentsite-backend/services/profile/db"
	"agentsite-backend/services/profile/merge"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/profile/store")

type Store struct {
	db         *sql.DB
	queries    *db.Queries
	now        func() time.Time
	slugSuffix func() (string, error)
}

func New(database *sql.DB) Store {
	return Store{
		db:         database,
		queries:    db.New(database),
		now:        time.Now,
		slugSuffix: randomSuffix,
	}
}

func randomSuffix() (string, error) {
	suffix, err := random.String(6)
	if err != nil {
		return "", err
	}
	return strings.ToLower(suffix), nil
}

// GetBySourceUrl returns the stored record for a source url, or nil when
// none exists yet.
func (s Store) GetBySourceUrl(ctx context.Context, sourceUrl string) (*merge.StoredRecord, error) {
	ctx, span := tracer.Start(ctx, "GetBySourceUrl")
	defer span.End()

	row, err := s.queries.GetProfile(ctx, sourceUrl)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	record := merge.StoredRecord{
		SourceUrl:        row.SourceUrl,
		WebsiteSlug:      row.WebsiteSlug,
		WebsitePublished: row.WebsitePublished,
		PasswordHash:     row.PasswordHash,
		FullName:         row.FullName,
		Email:            row.Email,
		MobilePhone:      row.MobilePhone,
		OfficePhone:      row.OfficePhone,
		HeadshotUrl:      row.HeadshotUrl,
		PersonalLogoUrl:  row.PersonalLogoUrl,
		BrokerageLogoUrl: row.BrokerageLogoUrl,
		Biography:        row.Biography,
		BiographySource:  row.BiographySource,
		OfficeName:       row.OfficeName,
		OfficeAddress:    row.OfficeAddress,
	}
	err = json.Unmarshal([]byte(row.AllPhones), &record.AllPhones)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("decoding stored phone list: %w", err)
	}
	err = json.Unmarshal([]byte(row.SocialLinks), &record.SocialLinks)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("decoding stored social links: %w", err)
	}
	return &record, nil
}

// slugWriteAttempts bounds the retries when a suffixed slug is itself
// claimed by a concurrent writer between the availability check and the
// insert.
const slugWriteAttempts = 3

// Upsert writes the reconciled field set. New records whose slug collides
// with a different record get a short random suffix so the unique
// constraint holds; an existing record keeps whatever slug it already has.
// The availability check and the insert are separate statements, so a
// write that still trips the slug constraint is retried with a fresh
// suffix.
func (s Store) Upsert(ctx context.Context, overrides merge.FieldOverrides) error {
	ctx, span := tracer.Start(ctx, "Upsert")
	defer span.End()

	allPhones, err := json.Marshal(orEmptyList(overrides.AllPhones))
	if err != nil {
		span.RecordError(err)
		return err
	}
	socialLinks, err := json.Marshal(orEmptyMap(overrides.SocialLinks))
	if err != nil {
		span.RecordError(err)
		return err
	}

	base := overrides.WebsiteSlug
	if base == "" {
		base = "agent"
	}
	slug, err := s.resolveSlug(ctx, base, overrides.SourceUrl)
	if err != nil {
		span.RecordError(err)
		return err
	}

	for attempt := 1; ; attempt++ {
		err = s.queries.UpsertProfile(ctx, db.UpsertProfileParams{
			SourceUrl:        overrides.SourceUrl,
			WebsiteSlug:      slug,
			FullName:         overrides.FullName,
			Email:            overrides.Email,
			MobilePhone:      overrides.MobilePhone,
			OfficePhone:      overrides.OfficePhone,
			AllPhones:        string(allPhones),
			HeadshotUrl:      overrides.HeadshotUrl,
			PersonalLogoUrl:  overrides.PersonalLogoUrl,
			BrokerageLogoUrl: overrides.BrokerageLogoUrl,
			Biography:        overrides.Biography,
			BiographySource:  overrides.BiographySource,
			OfficeName:       overrides.OfficeName,
			OfficeAddress:    overrides.OfficeAddress,
			SocialLinks:      string(socialLinks),
			Now:              s.now().Unix(),
		})
		if err == nil {
			return nil
		}
		if !isSlugConflict(err) || attempt >= slugWriteAttempts {
			span.RecordError(err)
			return err
		}
		slug, err = s.suffixedSlug(base)
		if err != nil {
			span.RecordError(err)
			return err
		}
	}
}

func isSlugConflict(err error) bool {
	return err != nil &&
		strings.Contains(err.Error(), "UNIQUE constraint failed: profiles.website_slug")
}

// Summary is the listing row shown by the CLI.
type Summary struct {
	SourceUrl   string
	WebsiteSlug string
	FullName    string
	Email       string
	UpdatedAt   int64
}

// List returns a summary of every stored profile, most recently updated
// first.
func (s Store) List(ctx context.Context) ([]Summary, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()

	rows, err := s.queries.ListProfiles(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	summaries := make([]Summary, len(rows))
	for i, r := range rows {
		summaries[i] = Summary{
			SourceUrl:   r.SourceUrl,
			WebsiteSlug: r.WebsiteSlug,
			FullName:    r.FullName,
			Email:       r.Email,
			UpdatedAt:   r.UpdatedAt,
		}
	}
	return summaries, nil
}

func (s Store) resolveSlug(ctx context.Context, slug, sourceUrl string) (string, error) {
	taken, err := s.queries.SlugTaken(ctx, slug, sourceUrl)
	if err != nil {
		return "", err
	}
	if !taken {
		return slug, nil
	}
	return s.suffixedSlug(slug)
}

func (s Store) suffixedSlug(base string) (string, error) {
	suffix, err := s.slugSuffix()
	if err != nil {
		return "", err
	}
	return base + "-" + suffix, nil
}

func orEmptyList(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
