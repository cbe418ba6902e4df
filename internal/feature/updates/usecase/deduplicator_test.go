package usecase

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"competitor_backend/internal/feature/updates/domain/entity"
)

func TestRegistrableDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.techcrunch.com/2025/acme", "techcrunch.com"},
		{"https://news.bbc.co.uk/story", "bbc.co.uk"},
		{"HTTPS://Blog.Acme.IO/post", "acme.io"},
		{"https://localhost:8080/x", "localhost"},
		{"not a url", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, RegistrableDomain(tt.url))
		})
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := Fingerprint("Acme raises $10M Series A", "https://techcrunch.com/a")
	b := Fingerprint("acme RAISES $10M series a!!", "https://www.techcrunch.com/b")
	c := Fingerprint("Acme raises $10M Series A", "https://reuters.com/a")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

// TestDeduplicator_CollapsesNormalizedTitles は表記揺れのあるタイトルが同じドメインで1件にまとめられることを検証します。
func TestDeduplicator_CollapsesNormalizedTitles(t *testing.T) {
	t.Parallel()

	d := NewDeduplicator(0)
	kept, dups := d.Dedupe([]entity.RawItem{
		{Title: "Acme raises $10M Series A", URL: "https://techcrunch.com/a", Summary: "short", PublishedAt: base},
		{Title: "acme RAISES $10M series a!!", URL: "https://techcrunch.com/b", Summary: "a much longer summary", PublishedAt: base.Add(time.Hour)},
	})

	require.Len(t, kept, 1)
	assert.Equal(t, 1, dups)
	assert.Equal(t, "a much longer summary", kept[0].Item.Summary, "more complete summary wins")
}

// TestDeduplicator_TieBreakEarliest は要約の長さが同じ場合に公開日時の早いものが残ることを検証します。
func TestDeduplicator_TieBreakEarliest(t *testing.T) {
	t.Parallel()

	d := NewDeduplicator(0)
	kept, _ := d.Dedupe([]entity.RawItem{
		{Title: "Acme launches Rocket", URL: "https://a.com/late", Summary: "same", PublishedAt: base.Add(time.Hour)},
		{Title: "Acme launches Rocket", URL: "https://a.com/early", Summary: "same", PublishedAt: base},
	})

	require.Len(t, kept, 1)
	assert.Equal(t, "https://a.com/early", kept[0].Item.URL)
}

// TestDeduplicator_NearDuplicateAcrossSources はJaccard係数が閾値を超えるタイトルを別ドメインでも重複とみなすことを検証します。
func TestDeduplicator_NearDuplicateAcrossSources(t *testing.T) {
	t.Parallel()

	d := NewDeduplicator(0.85)
	kept, dups := d.Dedupe([]entity.RawItem{
		// 7 tokens vs 7 tokens sharing 6 -> 6/8 = 0.75, kept apart
		{Title: "Acme unveils new analytics dashboard for enterprises", URL: "https://a.com/1", PublishedAt: base},
		{Title: "Acme unveils new analytics dashboard for startups", URL: "https://b.com/1", PublishedAt: base},
		// identical token sets on different domains -> 1.0, collapsed
		{Title: "Globex hires new CEO", URL: "https://c.com/1", PublishedAt: base},
		{Title: "New CEO hires Globex", URL: "https://d.com/1", PublishedAt: base},
	})

	assert.Len(t, kept, 3)
	assert.Equal(t, 1, dups)
}

// TestDeduplicator_OrderIndependent は入力順序に関係なく同じ結果になることを検証します。
func TestDeduplicator_OrderIndependent(t *testing.T) {
	t.Parallel()

	in := []entity.RawItem{
		{Title: "Acme raises $10M Series A", URL: "https://techcrunch.com/a", Summary: "x", PublishedAt: base},
		{Title: "Acme raises $10M Series A!", URL: "https://techcrunch.com/b", Summary: "xy", PublishedAt: base},
		{Title: "Acme raises 10M series A", URL: "https://www.techcrunch.com/c", Summary: "xy", PublishedAt: base.Add(-time.Hour)},
		{Title: "Acme signs partnership with Initech", URL: "https://reuters.com/p", PublishedAt: base.Add(2 * time.Hour)},
		{Title: "Acme partnership with Initech signs", URL: "https://bloomberg.com/p", PublishedAt: base.Add(time.Hour)},
		{Title: "Unrelated story", URL: "https://example.org/u"},
	}
	d := NewDeduplicator(0)
	want, wantDups := d.Dedupe(in)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]entity.RawItem(nil), in...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, gotDups := d.Dedupe(shuffled)

		assert.Equal(t, wantDups, gotDups)
		if diff := cmp.Diff(want, got, cmpopts.IgnoreUnexported(Candidate{})); diff != "" {
			t.Fatalf("dedupe depends on input order (-want +got):\n%s", diff)
		}
	}
	require.Len(t, want, 3)
	assert.Equal(t, "https://www.techcrunch.com/c", want[1].Item.URL, "longest summary then earliest wins")
}

func TestDeduplicator_DropsEmptyTitles(t *testing.T) {
	t.Parallel()

	kept, dups := NewDeduplicator(0).Dedupe([]entity.RawItem{{Title: "!!!", URL: "https://a.com"}})

	assert.Empty(t, kept)
	assert.Equal(t, 1, dups)
}

func TestFilterExisting(t *testing.T) {
	t.Parallel()

	kept, _ := NewDeduplicator(0).Dedupe([]entity.RawItem{
		{Title: "one", URL: "https://a.com/1"},
		{Title: "two", URL: "https://a.com/2"},
	})
	existing := map[string]struct{}{Fingerprint("one", "https://a.com/other"): {}}

	fresh, dups := FilterExisting(kept, existing)

	require.Len(t, fresh, 1)
	assert.Equal(t, "two", fresh[0].Item.Title)
	assert.Equal(t, 1, dups)
}
