// Package entity defines the tracked organization type.
package entity

import (
	"strings"
	"time"
)

// Organization は追跡対象の組織（競合企業）です。
// 削除するとその組織の更新情報もすべて削除されます。
type Organization struct {
	ID          uint
	Name        string
	Website     string
	Industry    string
	Description string
	Keywords    []string
	Location    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SearchKeywords は空白を除去した重複のないキーワードを返します。
func (o Organization) SearchKeywords() []string {
	seen := make(map[string]struct{}, len(o.Keywords))
	out := make([]string, 0, len(o.Keywords))
	for _, k := range o.Keywords {
		k = strings.TrimSpace(k)
		key := strings.ToLower(k)
		if k == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, k)
	}
	return out
}
