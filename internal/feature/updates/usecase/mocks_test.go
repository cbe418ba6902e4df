package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	orgdomain "competitor_backend/internal/feature/organizations/domain"
	orgentity "competitor_backend/internal/feature/organizations/domain/entity"
	"competitor_backend/internal/feature/updates/domain/entity"
)

var ErrDB = errors.New("database error")

// mockConnector はSourceConnectorのモック実装です。呼び出しごとに SearchFunc の結果を返します。
type mockConnector struct {
	name       string
	configured bool
	social     bool
	SearchFunc func(ctx context.Context, q Query, call int) ([]entity.RawItem, error)

	mu    sync.Mutex
	calls int
}

func (m *mockConnector) Name() string         { return m.name }
func (m *mockConnector) Configured() bool     { return m.configured }
func (m *mockConnector) SupportsSocial() bool { return m.social }

func (m *mockConnector) Search(ctx context.Context, q Query) ([]entity.RawItem, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.mu.Unlock()
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, q, call)
	}
	return nil, nil
}

func (m *mockConnector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// memoryUpdateRepository はUpdateRepositoryのインメモリ実装です。
type memoryUpdateRepository struct {
	mu        sync.Mutex
	rows      []entity.Update
	insertErr error
	existsErr error
}

func (r *memoryUpdateRepository) ExistingFingerprints(ctx context.Context, orgID uint, fps []string) (map[string]struct{}, error) {
	if r.existsErr != nil {
		return nil, r.existsErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]struct{}, len(fps))
	for _, fp := range fps {
		want[fp] = struct{}{}
	}
	out := map[string]struct{}{}
	for _, u := range r.rows {
		if u.OrganizationID != orgID {
			continue
		}
		if _, ok := want[u.Fingerprint]; ok {
			out[u.Fingerprint] = struct{}{}
		}
	}
	return out, nil
}

func (r *memoryUpdateRepository) InsertIfAbsent(ctx context.Context, u entity.Update) (bool, error) {
	if r.insertErr != nil {
		return false, r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.rows {
		if x.OrganizationID == u.OrganizationID && x.Fingerprint == u.Fingerprint {
			return false, nil
		}
	}
	r.rows = append(r.rows, u)
	return true, nil
}

func (r *memoryUpdateRepository) FindByOrganization(ctx context.Context, orgID uint, since time.Time) ([]entity.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Update
	for _, u := range r.rows {
		if u.OrganizationID == orgID && !u.PublishedAt.Before(since) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memoryUpdateRepository) count(orgID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.rows {
		if u.OrganizationID == orgID {
			n++
		}
	}
	return n
}

// mockOrganizationSource はOrganizationSourceのモック実装です。
type mockOrganizationSource struct {
	orgs    []orgentity.Organization
	listErr error
}

func (m *mockOrganizationSource) FindByID(ctx context.Context, id uint) (*orgentity.Organization, error) {
	for _, o := range m.orgs {
		if o.ID == id {
			o := o
			return &o, nil
		}
	}
	return nil, orgdomain.ErrOrganizationNotFound
}

func (m *mockOrganizationSource) List(ctx context.Context) ([]orgentity.Organization, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.orgs, nil
}

// memoryTrackingRepository はTrackingRepositoryのインメモリ実装です。
type memoryTrackingRepository struct {
	mu   sync.Mutex
	runs []entity.TrackingRun
	err  error
}

func (r *memoryTrackingRepository) Record(ctx context.Context, run entity.TrackingRun) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

func (r *memoryTrackingRepository) ListByOrganization(ctx context.Context, orgID uint, limit int) ([]entity.TrackingRun, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.TrackingRun
	for _, run := range r.runs {
		if run.OrganizationID == orgID {
			out = append(out, run)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// mockStatsRepository はStatsRepositoryのモック実装です。
type mockStatsRepository struct {
	StatsFunc func(ctx context.Context, since time.Time) (*entity.Stats, error)
}

func (m *mockStatsRepository) Stats(ctx context.Context, since time.Time) (*entity.Stats, error) {
	return m.StatsFunc(ctx, since)
}

// mockSentimentJudge はSentimentJudgeのモック実装です。
type mockSentimentJudge struct {
	label entity.Sentiment
	score float64
	err   error
}

func (m *mockSentimentJudge) JudgeSentiment(ctx context.Context, title, summary string) (entity.Sentiment, float64, error) {
	return m.label, m.score, m.err
}

// mockArticleSummarizer はArticleSummarizerのモック実装です。
type mockArticleSummarizer struct {
	out string
	err error

	mu       sync.Mutex
	calls    int
	maxWords int
}

func (m *mockArticleSummarizer) SummarizeArticle(ctx context.Context, title, content string, maxWords int) (string, error) {
	m.mu.Lock()
	m.calls++
	m.maxWords = maxWords
	m.mu.Unlock()
	return m.out, m.err
}

func (m *mockArticleSummarizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// noSleep はテスト用の待機関数で、待機時間を記録して即座に戻ります。
type noSleep struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (n *noSleep) sleep(ctx context.Context, d time.Duration) error {
	n.mu.Lock()
	n.waits = append(n.waits, d)
	n.mu.Unlock()
	return ctx.Err()
}
