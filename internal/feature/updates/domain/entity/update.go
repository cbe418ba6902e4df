// Package entity defines the intelligence update types of the updates feature.
package entity

import "time"

// Kind は更新情報の種別です。
type Kind string

const (
	KindNews          Kind = "News"
	KindProductChange Kind = "ProductChange"
	KindCompanyUpdate Kind = "CompanyUpdate"
)

// Category はルールベース分類で付与されるカテゴリです（相互排他）。
type Category string

const (
	CategoryFunding     Category = "funding"
	CategoryLeadership  Category = "leadership"
	CategoryPartnership Category = "partnership"
	CategoryLegal       Category = "legal"
	CategoryProduct     Category = "product"
	CategoryOther       Category = "other"
)

// CategoryPriority は分類の優先順位です。複数カテゴリに一致した場合は先頭が採用されます。
var CategoryPriority = []Category{
	CategoryFunding,
	CategoryLeadership,
	CategoryPartnership,
	CategoryLegal,
	CategoryProduct,
	CategoryOther,
}

// Rank は CategoryPriority 内の位置を返します。未知のカテゴリは最後尾です。
func (c Category) Rank() int {
	for i, p := range CategoryPriority {
		if p == c {
			return i
		}
	}
	return len(CategoryPriority)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c.Rank() < len(CategoryPriority)
}

// KindForCategory はカテゴリから更新種別を導出します。
func KindForCategory(c Category) Kind {
	switch c {
	case CategoryProduct:
		return KindProductChange
	case CategoryFunding, CategoryLeadership, CategoryPartnership, CategoryLegal:
		return KindCompanyUpdate
	default:
		return KindNews
	}
}

// Sentiment は極性ラベルです。
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// RawItem はソースコネクタが返す未加工の記事です。
type RawItem struct {
	Title       string
	URL         string
	PublishedAt time.Time
	Source      string
	Summary     string
	Social      bool
}

// Update は分類・重複排除済みの1件のインテリジェンスです。
// 保存後は再分類による訂正以外で変更されません。
type Update struct {
	ID                 string
	OrganizationID     uint
	Kind               Kind
	Title              string
	URL                string
	PublishedAt        time.Time
	Source             string
	Summary            string
	AISummary          string
	Category           Category
	CategoryConfidence float64
	Sentiment          Sentiment
	SentimentScore     float64
	LexiconSentiment   Sentiment
	LexiconScore       float64
	Social             bool
	Fingerprint        string
	FetchedAt          time.Time
}
