package store

import (
	"context"
	"strings"
	"testing"

	"agentsite-backend/lib/testutil"
	"agentsite-backend/services/profile/db"
	"agentsite-backend/services/profile/merge"

	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) Store {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "profile/store",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)
	return New(res.DB)
}

func janeOverrides() merge.FieldOverrides {
	return merge.FieldOverrides{
		SourceUrl:   "https://example.com/jane-doe",
		WebsiteSlug: "jane-doe",
		FullName:    "Jane Doe",
		Email:       "jane@brokerage.com",
		MobilePhone: "(972) 555-0134",
		OfficePhone: "(972) 555-0199",
		AllPhones:   []string{"(972) 555-0134", "(972) 555-0199"},
		SocialLinks: map[string]string{"linkedin": "https://www.linkedin.com/in/janedoe"},
	}
}

func TestUpsertRoundTrip(t *testing.T) {
	profiles := setup(t)
	ctx := context.Background()

	missing, err := profiles.GetBySourceUrl(ctx, "https://example.com/jane-doe")
	require.NoError(t, err)
	require.Nil(t, missing)

	require.NoError(t, profiles.Upsert(ctx, janeOverrides()))

	record, err := profiles.GetBySourceUrl(ctx, "https://example.com/jane-doe")
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, "jane-doe", record.WebsiteSlug)
	require.Equal(t, "jane@brokerage.com", record.Email)
	require.Equal(t, []string{"(972) 555-0134", "(972) 555-0199"}, record.AllPhones)
	require.Equal(t, "https://www.linkedin.com/in/janedoe", record.SocialLinks["linkedin"])
	require.False(t, record.WebsitePublished)
}

func TestUpsertPreservesSlugAndEmail(t *testing.T) {
	profiles := setup(t)
	ctx := context.Background()

	require.NoError(t, profiles.Upsert(ctx, janeOverrides()))

	second := janeOverrides()
	second.WebsiteSlug = "jane-smith"
	second.Email = "different@brokerage.com"
	second.MobilePhone = "(214) 555-0000"
	require.NoError(t, profiles.Upsert(ctx, second))

	record, err := profiles.GetBySourceUrl(ctx, "https://example.com/jane-doe")
	require.NoError(t, err)
	// the conditional upsert keeps the slug and the differing stored email
	// but takes the fresh phone
	require.Equal(t, "jane-doe", record.WebsiteSlug)
	require.Equal(t, "jane@brokerage.com", record.Email)
	require.Equal(t, "(214) 555-0000", record.MobilePhone)
}

func TestUpsertSlugCollisionGetsSuffix(t *testing.T) {
	profiles := setup(t)
	ctx := context.Background()

	require.NoError(t, profiles.Upsert(ctx, janeOverrides()))

	other := janeOverrides()
	other.SourceUrl = "https://example.com/the-other-jane-doe"
	require.NoError(t, profiles.Upsert(ctx, other))

	record, err := profiles.GetBySourceUrl(ctx, "https://example.com/the-other-jane-doe")
	require.NoError(t, err)
	require.NotEqual(t, "jane-doe", record.WebsiteSlug)
	require.True(t, strings.HasPrefix(record.WebsiteSlug, "jane-doe-"))
}

func TestUpsertRetriesWhenSuffixedSlugIsTaken(t *testing.T) {
	profiles := setup(t)
	ctx := context.Background()

	require.NoError(t, profiles.Upsert(ctx, janeOverrides()))

	// a record already sits on the first suffix the generator will hand out
	squatter := janeOverrides()
	squatter.SourceUrl = "https://example.com/squatter"
	squatter.WebsiteSlug = "jane-doe-aaaaaa"
	require.NoError(t, profiles.Upsert(ctx, squatter))

	suffixes := []string{"aaaaaa", "bbbbbb"}
	profiles.slugSuffix = func() (string, error) {
		next := suffixes[0]
		suffixes = suffixes[1:]
		return next, nil
	}

	other := janeOverrides()
	other.SourceUrl = "https://example.com/the-other-jane-doe"
	require.NoError(t, profiles.Upsert(ctx, other))

	record, err := profiles.GetBySourceUrl(ctx, "https://example.com/the-other-jane-doe")
	require.NoError(t, err)
	require.Equal(t, "jane-doe-bbbbbb", record.WebsiteSlug)
}

func TestUpsertEmptySlugFallsBack(t *testing.T) {
	profiles := setup(t)
	ctx := context.Background()

	shell := merge.FieldOverrides{SourceUrl: "https://example.com/broken-page"}
	require.NoError(t, profiles.Upsert(ctx, shell))

	record, err := profiles.GetBySourceUrl(ctx, "https://example.com/broken-page")
	require.NoError(t, err)
	require.Equal(t, "agent", record.WebsiteSlug)
	require.Empty(t, record.AllPhones)
	require.Empty(t, record.SocialLinks)
}

func TestList(t *testing.T) {
	profiles := setup(t)
	ctx := context.Background()

	require.NoError(t, profiles.Upsert(ctx, janeOverrides()))
	other := janeOverrides()
	other.SourceUrl = "https://example.com/john-roe"
	other.WebsiteSlug = "john-roe"
	other.FullName = "John Roe"
	require.NoError(t, profiles.Upsert(ctx, other))

	summaries, err := profiles.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
}
