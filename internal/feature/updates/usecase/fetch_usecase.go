package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	orgentity "competitor_backend/internal/feature/organizations/domain/entity"
	"competitor_backend/internal/feature/updates/domain"
	"competitor_backend/internal/feature/updates/domain/entity"
)

const (
	// DefaultDays はフェッチ期間（日数）のデフォルト値です。
	DefaultDays = 7
	// DefaultMaxResults はコネクタから受け取る最大件数のデフォルト値です。
	DefaultMaxResults = 20
	// MaxMaxResults は受け付ける最大件数の上限です。
	MaxMaxResults = 100
	// DefaultConcurrency は複数組織を同時にフェッチするワーカー数です。
	DefaultConcurrency = 3
)

// FetchParams は FetchUpdates の入力です。OrganizationID が0の場合は全組織が対象です。
type FetchParams struct {
	OrganizationID uint
	Days           int
	MaxResults     int
	IncludeSocial  bool
}

// Fetcher はフォールバックチェーンを抽象化します。
type Fetcher interface {
	Fetch(ctx context.Context, q Query) entity.FetchBatch
}

// IngestRecorder は組織ごとの取り込み件数を記録します。
type IngestRecorder interface {
	ObserveIngest(fetched, duplicates, inserted int, exhausted bool)
}

// FetchOptions は FetchUsecase の調整値です。ゼロ値はデフォルトに置き換えられます。
type FetchOptions struct {
	Concurrency       int
	DefaultDays       int
	DefaultMaxResults int
}

// FetchUsecase は外部ソースから更新情報を取得し、重複排除・分類・極性判定を行って永続化します。
type FetchUsecase struct {
	orgs        OrganizationSource
	updates     UpdateRepository
	runs        TrackingRepository
	fetcher     Fetcher
	dedup       *Deduplicator
	categorizer *Categorizer
	sentiment   *SentimentScorer
	summarizer  *Summarizer
	recorder    IngestRecorder
	opts        FetchOptions
	now         func() time.Time
	newID       func() string
}

// NewFetchUsecase は新しい FetchUsecase を作成します。summarizer と recorder は nil でも構いません。
// summarizer が nil の場合は文単位の要約を使います。
func NewFetchUsecase(
	orgs OrganizationSource,
	updates UpdateRepository,
	runs TrackingRepository,
	fetcher Fetcher,
	dedup *Deduplicator,
	categorizer *Categorizer,
	sentiment *SentimentScorer,
	summarizer *Summarizer,
	recorder IngestRecorder,
	opts FetchOptions,
) *FetchUsecase {
	if summarizer == nil {
		summarizer = NewSummarizer(nil, 0)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = DefaultDays
	}
	if opts.DefaultMaxResults <= 0 {
		opts.DefaultMaxResults = DefaultMaxResults
	}
	return &FetchUsecase{
		orgs:        orgs,
		updates:     updates,
		runs:        runs,
		fetcher:     fetcher,
		dedup:       dedup,
		categorizer: categorizer,
		sentiment:   sentiment,
		summarizer:  summarizer,
		recorder:    recorder,
		opts:        opts,
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
}

// FetchUpdates は対象組織ごとにフェッチを実行します。
// 組織単位でコミットされるため、途中でキャンセルや永続化エラーが起きてもコミット済みの結果は残り、
// 部分的な結果とエラーの両方が返されます。
// ソースに到達できなかった場合もエラーにはならず、診断情報に理由が記録されます。
func (u *FetchUsecase) FetchUpdates(ctx context.Context, p FetchParams) (*entity.FetchResult, error) {
	p = u.normalize(p)

	var orgs []orgentity.Organization
	if p.OrganizationID != 0 {
		org, err := u.orgs.FindByID(ctx, p.OrganizationID)
		if err != nil {
			return nil, err
		}
		orgs = []orgentity.Organization{*org}
	} else {
		list, err := u.orgs.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list organizations: %w: %w", domain.ErrPersistence, err)
		}
		orgs = list
	}

	result := &entity.FetchResult{RunID: u.newID()}
	diags := make([]entity.Diagnostics, len(orgs))
	done := make([]bool, len(orgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.Concurrency)
	for i := range orgs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			d, err := u.fetchOne(gctx, orgs[i], p, result.RunID)
			diags[i] = d
			done[i] = true
			return err
		})
	}
	err := g.Wait()

	for i := range orgs {
		if !done[i] {
			continue
		}
		result.InsertedCount += diags[i].Inserted
		result.PerOrganization = append(result.PerOrganization, diags[i])
	}
	if err == nil {
		err = ctx.Err()
	}
	return result, err
}

func (u *FetchUsecase) normalize(p FetchParams) FetchParams {
	if p.Days <= 0 {
		p.Days = u.opts.DefaultDays
	}
	if p.MaxResults <= 0 {
		p.MaxResults = u.opts.DefaultMaxResults
	}
	if p.MaxResults > MaxMaxResults {
		p.MaxResults = MaxMaxResults
	}
	return p
}

// fetchOne は1組織分のフェッチ・重複排除・分類・保存を行います。
func (u *FetchUsecase) fetchOne(ctx context.Context, org orgentity.Organization, p FetchParams, runID string) (entity.Diagnostics, error) {
	started := u.now()
	d := entity.Diagnostics{OrganizationID: org.ID, OrganizationName: org.Name}

	batch := u.fetcher.Fetch(ctx, Query{
		OrganizationName: org.Name,
		Keywords:         org.SearchKeywords(),
		Since:            started.AddDate(0, 0, -p.Days),
		Until:            started,
		MaxResults:       p.MaxResults,
		IncludeSocial:    p.IncludeSocial,
	})
	d.Connector = batch.Connector
	d.Attempts = batch.Attempts
	d.Exhausted = batch.Exhausted
	d.Fetched = len(batch.Items)
	if err := ctx.Err(); err != nil {
		d.Error = err.Error()
		return d, err
	}

	kept, dups := u.dedup.Dedupe(batch.Items)
	d.Duplicates = dups

	if len(kept) > 0 {
		fps := make([]string, 0, len(kept))
		for _, c := range kept {
			fps = append(fps, c.Fingerprint)
		}
		existing, err := u.updates.ExistingFingerprints(ctx, org.ID, fps)
		if err != nil {
			return u.fail(d, fmt.Errorf("organization %d: %w: %w", org.ID, domain.ErrPersistence, err))
		}
		fresh, dupExisting := FilterExisting(kept, existing)
		d.Duplicates += dupExisting

		for _, c := range fresh {
			inserted, err := u.updates.InsertIfAbsent(ctx, u.buildUpdate(ctx, org.ID, c))
			if err != nil {
				return u.fail(d, fmt.Errorf("organization %d: %w: %w", org.ID, domain.ErrPersistence, err))
			}
			if inserted {
				d.Inserted++
			} else {
				d.Duplicates++
			}
		}
	}

	if u.recorder != nil {
		u.recorder.ObserveIngest(d.Fetched, d.Duplicates, d.Inserted, d.Exhausted)
	}

	run := entity.TrackingRun{
		RunID:          runID,
		OrganizationID: org.ID,
		Connector:      d.Connector,
		Fetched:        d.Fetched,
		Duplicates:     d.Duplicates,
		Inserted:       d.Inserted,
		Exhausted:      d.Exhausted,
		Reasons:        reasonsSummary(d.Attempts),
		StartedAt:      started,
		FinishedAt:     u.now(),
	}
	if err := u.runs.Record(ctx, run); err != nil {
		return u.fail(d, fmt.Errorf("record run for organization %d: %w: %w", org.ID, domain.ErrPersistence, err))
	}

	slog.Info("organization fetched", "component", "fetch", "organization", org.Name,
		"connector", d.Connector, "fetched", d.Fetched, "duplicates", d.Duplicates, "inserted", d.Inserted, "exhausted", d.Exhausted)
	return d, nil
}

func (u *FetchUsecase) fail(d entity.Diagnostics, err error) (entity.Diagnostics, error) {
	if !errors.Is(err, context.Canceled) {
		slog.Error("failed to persist updates", "component", "fetch", "organization", d.OrganizationName, "error", err)
	}
	d.Error = err.Error()
	return d, err
}

func (u *FetchUsecase) buildUpdate(ctx context.Context, orgID uint, c Candidate) entity.Update {
	cls := u.categorizer.Categorize(c.Item.Title, c.Item.Summary)
	final, lex := u.sentiment.Score(ctx, c.Item.Title, c.Item.Summary)
	published := c.Item.PublishedAt
	fetchedAt := u.now()
	if published.IsZero() {
		published = fetchedAt
	}
	return entity.Update{
		ID:                 u.newID(),
		OrganizationID:     orgID,
		Kind:               entity.KindForCategory(cls.Category),
		Title:              strings.TrimSpace(c.Item.Title),
		URL:                strings.TrimSpace(c.Item.URL),
		PublishedAt:        published.UTC(),
		Source:             c.Item.Source,
		Summary:            strings.TrimSpace(c.Item.Summary),
		AISummary:          u.summarizer.Summarize(ctx, c.Item.Title, c.Item.Summary),
		Category:           cls.Category,
		CategoryConfidence: cls.Confidence,
		Sentiment:          final.Label,
		SentimentScore:     final.Score,
		LexiconSentiment:   lex.Label,
		LexiconScore:       lex.Score,
		Social:             c.Item.Social,
		Fingerprint:        c.Fingerprint,
		FetchedAt:          fetchedAt.UTC(),
	}
}

func reasonsSummary(attempts []entity.ConnectorAttempt) string {
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		parts = append(parts, a.Connector+"="+a.Reason)
	}
	return strings.Join(parts, ",")
}
