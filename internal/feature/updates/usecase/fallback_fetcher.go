package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"competitor_backend/internal/feature/updates/domain"
	"competitor_backend/internal/feature/updates/domain/entity"
)

// FallbackConfig はフォールバックチェーンのリトライ・タイムアウト設定です。
type FallbackConfig struct {
	// RetryBackoff は RateLimited / Unavailable 後の再試行までの待機時間です。
	RetryBackoff time.Duration
	// MaxBackoff は Retry-After を含む待機時間の上限です。
	MaxBackoff time.Duration
	// CallTimeout はコネクタ呼び出し1回あたりのタイムアウトです。
	CallTimeout time.Duration
}

// FetchRecorder はコネクタ試行の観測を受け取ります。nil の場合は記録しません。
type FetchRecorder interface {
	ObserveConnectorAttempt(connector, reason string, d time.Duration)
}

// FallbackFetcher は優先順位付きのコネクタを順番に試し、最初に結果を返したものを採用します。
// 同一組織のフェッチ内でコネクタを並列に呼ぶことはありません。
type FallbackFetcher struct {
	connectors []SourceConnector
	cfg        FallbackConfig
	recorder   FetchRecorder
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewFallbackFetcher は connectors の並び順を優先順位としてFallbackFetcherを生成します。
func NewFallbackFetcher(connectors []SourceConnector, cfg FallbackConfig, recorder FetchRecorder) *FallbackFetcher {
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	if cfg.MaxBackoff < cfg.RetryBackoff {
		cfg.MaxBackoff = cfg.RetryBackoff
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 15 * time.Second
	}
	return &FallbackFetcher{
		connectors: connectors,
		cfg:        cfg,
		recorder:   recorder,
		sleep:      sleepContext,
	}
}

// Fetch はフォールバックチェーンを実行します。
// すべてのコネクタが失敗しても error は返さず、Exhausted と各コネクタの理由を持つ空のバッチを返します。
func (f *FallbackFetcher) Fetch(ctx context.Context, q Query) entity.FetchBatch {
	batch := entity.FetchBatch{}
	chosen := -1

	for i, c := range f.connectors {
		if ctx.Err() != nil {
			batch.Attempts = append(batch.Attempts, entity.ConnectorAttempt{Connector: c.Name(), Reason: entity.ReasonCanceled})
			continue
		}
		if !c.Configured() {
			batch.Attempts = append(batch.Attempts, entity.ConnectorAttempt{Connector: c.Name(), Reason: entity.ReasonUnconfigured})
			continue
		}

		items, attempt := f.call(ctx, c, q)
		batch.Attempts = append(batch.Attempts, attempt)

		isLast := i == len(f.connectors)-1
		if attempt.Reason == entity.ReasonOK || (attempt.Reason == entity.ReasonNoResults && isLast) {
			batch.Items = truncateNewest(items, q.MaxResults)
			batch.Connector = c.Name()
			chosen = i
			break
		}
	}

	if chosen >= 0 && q.IncludeSocial && !f.connectors[chosen].SupportsSocial() {
		batch.Items = append(batch.Items, f.socialAugment(ctx, q, chosen, &batch)...)
	}

	batch.Exhausted = len(batch.Items) == 0 && !anyReason(batch.Attempts, entity.ReasonOK, entity.ReasonNoResults)
	if batch.Exhausted {
		slog.Warn("all connectors failed", "component", "fallback_fetcher",
			"organization", q.OrganizationName, "error", domain.ErrAllConnectorsExhausted, "attempts", len(batch.Attempts))
	}
	return batch
}

// socialAugment は採用コネクタがソーシャル非対応の場合に、後続の対応コネクタからソーシャル投稿を追加取得します。
// 採用コネクタより前のコネクタはすでに失敗しているため対象外です。
func (f *FallbackFetcher) socialAugment(ctx context.Context, q Query, chosen int, batch *entity.FetchBatch) []entity.RawItem {
	for _, c := range f.connectors[chosen+1:] {
		if !c.SupportsSocial() || !c.Configured() {
			continue
		}
		items, attempt := f.call(ctx, c, q)
		batch.Attempts = append(batch.Attempts, attempt)
		if attempt.Reason != entity.ReasonOK {
			return nil
		}
		social := make([]entity.RawItem, 0, len(items))
		for _, it := range items {
			if it.Social {
				social = append(social, it)
			}
		}
		return truncateNewest(social, q.MaxResults)
	}
	return nil
}

// call は1つのコネクタを呼び出し、RateLimited / Unavailable の場合は1回だけ再試行します。
func (f *FallbackFetcher) call(ctx context.Context, c SourceConnector, q Query) ([]entity.RawItem, entity.ConnectorAttempt) {
	attempt := entity.ConnectorAttempt{Connector: c.Name()}

	items, err := f.searchOnce(ctx, c, q)
	if err != nil && retryable(err) {
		wait := f.backoff(err)
		slog.Warn("connector failed, retrying", "component", "fallback_fetcher", "connector", c.Name(), "wait", wait, "error", err)
		if serr := f.sleep(ctx, wait); serr != nil {
			attempt.Reason = entity.ReasonCanceled
			attempt.Error = err.Error()
			return nil, attempt
		}
		attempt.Retried = true
		items, err = f.searchOnce(ctx, c, q)
	}

	if err != nil {
		attempt.Reason = reasonFor(err)
		attempt.Error = err.Error()
		slog.Warn("connector skipped", "component", "fallback_fetcher", "connector", c.Name(), "reason", attempt.Reason, "error", err)
		return nil, attempt
	}

	attempt.Items = len(items)
	if len(items) == 0 {
		attempt.Reason = entity.ReasonNoResults
	} else {
		attempt.Reason = entity.ReasonOK
	}
	return items, attempt
}

func (f *FallbackFetcher) searchOnce(ctx context.Context, c SourceConnector, q Query) ([]entity.RawItem, error) {
	callCtx, cancel := context.WithTimeout(ctx, f.cfg.CallTimeout)
	defer cancel()

	// ソーシャル投稿は対応を宣言したコネクタにだけ要求する
	q.IncludeSocial = q.IncludeSocial && c.SupportsSocial()

	start := time.Now()
	items, err := c.Search(callCtx, q)
	if err != nil && !isConnectorError(err) {
		// タイムアウトや想定外のエラーは Unavailable として扱う
		err = domain.NewConnectorError(c.Name(), domain.ErrConnectorUnavailable, err)
	}
	if f.recorder != nil {
		reason := entity.ReasonOK
		if err != nil {
			reason = reasonFor(err)
		} else if len(items) == 0 {
			reason = entity.ReasonNoResults
		}
		f.recorder.ObserveConnectorAttempt(c.Name(), reason, time.Since(start))
	}
	return items, err
}

// backoff は Retry-After を尊重しつつ MaxBackoff で上限を設けた待機時間を返します。
func (f *FallbackFetcher) backoff(err error) time.Duration {
	wait := f.cfg.RetryBackoff
	var ce *domain.ConnectorError
	if errors.As(err, &ce) && ce.RetryAfter > wait {
		wait = ce.RetryAfter
	}
	if wait > f.cfg.MaxBackoff {
		wait = f.cfg.MaxBackoff
	}
	return wait
}

func retryable(err error) bool {
	return errors.Is(err, domain.ErrConnectorRateLimited) || errors.Is(err, domain.ErrConnectorUnavailable)
}

func isConnectorError(err error) bool {
	var ce *domain.ConnectorError
	return errors.As(err, &ce)
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrConnectorUnauthorized):
		return entity.ReasonUnauthorized
	case errors.Is(err, domain.ErrConnectorRateLimited):
		return entity.ReasonRateLimited
	case errors.Is(err, domain.ErrConnectorMalformedResponse):
		return entity.ReasonMalformedResponse
	case errors.Is(err, context.Canceled):
		return entity.ReasonCanceled
	default:
		return entity.ReasonUnavailable
	}
}

func anyReason(attempts []entity.ConnectorAttempt, reasons ...string) bool {
	for _, a := range attempts {
		for _, r := range reasons {
			if a.Reason == r {
				return true
			}
		}
	}
	return false
}

// truncateNewest は公開日時の新しい順に max 件まで残します。古いものから切り捨てられます。
func truncateNewest(items []entity.RawItem, max int) []entity.RawItem {
	if max <= 0 || len(items) <= max {
		return items
	}
	sorted := make([]entity.RawItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].PublishedAt, sorted[j].PublishedAt
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.After(b)
	})
	return sorted[:max]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
