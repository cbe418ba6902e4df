package usecase

import (
	"competitor_backend/internal/feature/updates/domain/entity"
	"competitor_backend/internal/shared/textnorm"
)

// confidencePerTrigger は一致したトリガー1つあたりの信頼度です。
const confidencePerTrigger = 0.25

// categoryTriggers は各カテゴリのトリガー語句です。語句はトークン境界で照合されます。
// "fine" や "executive" のような一般語は単独では使わず、語形や複数語の句で指定します。
var categoryTriggers = map[entity.Category][]string{
	entity.CategoryFunding: {
		"funding", "raises", "raised", "series a", "series b", "series c", "series d",
		"seed round", "investment", "investors", "valuation", "ipo", "venture capital",
		"acquisition", "acquires", "acquired", "acquire", "merger", "merges", "buyout",
	},
	entity.CategoryLeadership: {
		"ceo", "cto", "cfo", "coo", "chief executive", "new executive", "executive team change", "leadership", "appoints",
		"appointed", "hires", "steps down", "resigns", "board of directors", "founder",
	},
	entity.CategoryPartnership: {
		"partnership", "partners with", "partner", "partnering", "collaboration", "collaborate",
		"alliance", "joint venture", "integration with", "teams up",
	},
	entity.CategoryLegal: {
		"lawsuit", "sued", "sues", "litigation", "regulator", "regulatory", "fined", "fines", "penalty",
		"settlement", "antitrust", "investigation", "compliance", "court", "patent",
	},
	entity.CategoryProduct: {
		"launch", "launches", "launched", "release", "releases", "released", "new feature",
		"new features", "product", "product update", "software update", "version", "beta",
		"introduces", "unveils", "pricing",
		"rebrand", "discontinue", "sunset", "roadmap",
	},
}

// Classification はカテゴリ判定の結果です。
type Classification struct {
	Category   entity.Category
	Confidence float64
	Matched    []string
}

// Categorizer はキーワード分類器です。
type Categorizer struct {
	triggers map[entity.Category][]string
}

// NewCategorizer はデフォルトのトリガー語句でCategorizerを生成します。
func NewCategorizer() *Categorizer {
	normalized := make(map[entity.Category][]string, len(categoryTriggers))
	for c, ts := range categoryTriggers {
		for _, t := range ts {
			normalized[c] = append(normalized[c], textnorm.Normalize(t))
		}
	}
	return &Categorizer{triggers: normalized}
}

// Categorize は優先順位（funding > leadership > partnership > legal > product）で最初に一致したカテゴリを返します。
// 信頼度は一致した異なるトリガーの数に比例し、1.0が上限です。
func (c *Categorizer) Categorize(title, summary string) Classification {
	text := textnorm.Normalize(title + " " + summary)
	for _, cat := range entity.CategoryPriority {
		if cat == entity.CategoryOther {
			break
		}
		var matched []string
		for _, t := range c.triggers[cat] {
			if textnorm.ContainsPhrase(text, t) {
				matched = append(matched, t)
			}
		}
		if len(matched) == 0 {
			continue
		}
		conf := float64(len(matched)) * confidencePerTrigger
		if conf > 1 {
			conf = 1
		}
		return Classification{Category: cat, Confidence: conf, Matched: matched}
	}
	return Classification{Category: entity.CategoryOther, Confidence: 0}
}
