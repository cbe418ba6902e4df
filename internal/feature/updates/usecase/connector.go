// Package usecase はupdatesフィーチャーのビジネスロジック（取得・重複排除・分類・極性判定）を実装します。
package usecase

import (
	"context"
	"strings"
	"time"

	"competitor_backend/internal/feature/updates/domain/entity"
)

// Query はソースコネクタへの検索条件です。
type Query struct {
	// OrganizationName は検索の主語となる組織名です。
	OrganizationName string
	// Keywords は組織に紐づく補助キーワードです。
	Keywords      []string
	Since         time.Time
	Until         time.Time
	MaxResults    int
	IncludeSocial bool
}

// Terms は組織名とキーワードを空白区切りで連結した検索語を返します。
func (q Query) Terms() string {
	parts := make([]string, 0, len(q.Keywords)+1)
	if name := strings.TrimSpace(q.OrganizationName); name != "" {
		parts = append(parts, name)
	}
	for _, k := range q.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			parts = append(parts, k)
		}
	}
	return strings.Join(parts, " ")
}

// SourceConnector は外部ソースごとのアダプタが満たす共通の能力契約です。
// 結果が0件の場合はエラーではなく空スライスを返します。
// 失敗時は domain.ConnectorError を返します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SourceConnector interface {
	Name() string
	// Configured は認証情報など実行に必要な設定が揃っているかを返します。
	Configured() bool
	// SupportsSocial はソーシャルメディアの投稿を返せるかを返します。
	SupportsSocial() bool
	Search(ctx context.Context, q Query) ([]entity.RawItem, error)
}
