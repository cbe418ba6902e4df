package usecase

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/net/publicsuffix"

	"competitor_backend/internal/feature/updates/domain/entity"
	"competitor_backend/internal/shared/textnorm"
)

// DefaultSimilarityThreshold はタイトルのトークン集合のJaccard係数がこれを超えると重複とみなす値です。
const DefaultSimilarityThreshold = 0.85

// Candidate は重複排除の対象となる正規化済みの記事です。
type Candidate struct {
	Item            entity.RawItem
	NormalizedTitle string
	Domain          string
	Fingerprint     string
	tokens          map[string]struct{}
}

// Deduplicator はフェッチバッチ内および既存の保存済み更新との重複を取り除きます。
type Deduplicator struct {
	threshold float64
}

// NewDeduplicator は threshold が (0, 1] の範囲外の場合にデフォルト値を使います。
func NewDeduplicator(threshold float64) *Deduplicator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &Deduplicator{threshold: threshold}
}

// Threshold returns the similarity cutoff in use.
func (d *Deduplicator) Threshold() float64 { return d.threshold }

// Fingerprint は正規化タイトルと登録可能ドメインのハッシュです。
func Fingerprint(title, rawURL string) string {
	return fingerprint(textnorm.Normalize(title), RegistrableDomain(rawURL))
}

func fingerprint(normTitle, domain string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(normTitle+"|"+domain))
}

// RegistrableDomain はURLの登録可能ドメイン（eTLD+1）を返します。
// 解決できない場合は "www." を除いたホスト名を返します。
func RegistrableDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return strings.TrimPrefix(host, "www.")
}

// Dedupe はバッチ内の重複を取り除きます。
// 重複グループからは要約がより長いものを残し、同じ長さなら公開日時が早いものを残します。
// 結果は入力順序に依存しません。
func (d *Deduplicator) Dedupe(items []entity.RawItem) (kept []Candidate, duplicates int) {
	cands := make([]Candidate, 0, len(items))
	for _, it := range items {
		norm := textnorm.Normalize(it.Title)
		if norm == "" {
			duplicates++
			continue
		}
		dom := RegistrableDomain(it.URL)
		cands = append(cands, Candidate{
			Item:            it,
			NormalizedTitle: norm,
			Domain:          dom,
			Fingerprint:     fingerprint(norm, dom),
			tokens:          textnorm.TokenSet(norm),
		})
	}

	// 残すべき候補が先頭に来るよう正準順序に並べ、貪欲に採用する
	sort.SliceStable(cands, func(i, j int) bool { return preferred(cands[i], cands[j]) })

	seen := make(map[string]struct{}, len(cands))
	for _, c := range cands {
		if _, ok := seen[c.Fingerprint]; ok {
			duplicates++
			continue
		}
		if d.similarToAny(c, kept) {
			duplicates++
			continue
		}
		seen[c.Fingerprint] = struct{}{}
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i].Item.PublishedAt, kept[j].Item.PublishedAt
		if !a.Equal(b) {
			return a.Before(b)
		}
		return kept[i].Fingerprint < kept[j].Fingerprint
	})
	return kept, duplicates
}

// FilterExisting は保存済みのフィンガープリントと一致する候補を取り除きます。
func FilterExisting(cands []Candidate, existing map[string]struct{}) (fresh []Candidate, duplicates int) {
	for _, c := range cands {
		if _, ok := existing[c.Fingerprint]; ok {
			duplicates++
			continue
		}
		fresh = append(fresh, c)
	}
	return fresh, duplicates
}

func (d *Deduplicator) similarToAny(c Candidate, kept []Candidate) bool {
	for _, k := range kept {
		if textnorm.Jaccard(c.tokens, k.tokens) > d.threshold {
			return true
		}
	}
	return false
}

// preferred は a が b より優先して残されるべきかを返します。
func preferred(a, b Candidate) bool {
	la := utf8.RuneCountInString(strings.TrimSpace(a.Item.Summary))
	lb := utf8.RuneCountInString(strings.TrimSpace(b.Item.Summary))
	if la != lb {
		return la > lb
	}
	ta, tb := a.Item.PublishedAt, b.Item.PublishedAt
	if !ta.Equal(tb) {
		if ta.IsZero() != tb.IsZero() {
			return !ta.IsZero()
		}
		return ta.Before(tb)
	}
	if a.Fingerprint != b.Fingerprint {
		return a.Fingerprint < b.Fingerprint
	}
	return a.Item.URL < b.Item.URL
}
