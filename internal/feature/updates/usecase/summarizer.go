package usecase

import (
	"context"
	"log/slog"
	"strings"
)

// DefaultSummaryWords は要約の語数上限のデフォルト値です。
const DefaultSummaryWords = 50

// ArticleSummarizer はAIによる記事要約です。
type ArticleSummarizer interface {
	SummarizeArticle(ctx context.Context, title, content string, maxWords int) (string, error)
}

// Summarizer は更新情報ごとの短い要約を作ります。
// AIが未設定または失敗した場合は先頭の文を語数上限まで残す要約を使います。
type Summarizer struct {
	ai       ArticleSummarizer
	maxWords int
}

// NewSummarizer は ai が nil の場合は文単位の要約のみを行います。
func NewSummarizer(ai ArticleSummarizer, maxWords int) *Summarizer {
	if maxWords <= 0 {
		maxWords = DefaultSummaryWords
	}
	return &Summarizer{ai: ai, maxWords: maxWords}
}

// Summarize は要約を返します。本文が空の場合はタイトルを対象にします。
func (s *Summarizer) Summarize(ctx context.Context, title, content string) string {
	text := strings.TrimSpace(content)
	if text == "" {
		text = strings.TrimSpace(title)
	}
	if text == "" {
		return ""
	}
	if s.ai == nil {
		return LeadSentences(text, s.maxWords)
	}
	out, err := s.ai.SummarizeArticle(ctx, title, text, s.maxWords)
	out = strings.TrimSpace(out)
	if err != nil || out == "" {
		slog.Warn("article summarizer failed, using lead sentences", "component", "summarizer", "error", err)
		return LeadSentences(text, s.maxWords)
	}
	return out
}

// LeadSentences は先頭から文単位で maxWords 語まで残します。
// 最初の文だけで上限を超える場合は語単位で切り詰めて "..." を付けます。
func LeadSentences(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if maxWords <= 0 {
		maxWords = DefaultSummaryWords
	}

	var kept, sentence []string
	flush := func() bool {
		if len(kept)+len(sentence) > maxWords {
			return false
		}
		kept = append(kept, sentence...)
		sentence = sentence[:0]
		return true
	}
	for _, w := range words {
		sentence = append(sentence, w)
		if endsSentence(w) && !flush() {
			break
		}
	}
	if len(sentence) > 0 && len(kept)+len(sentence) <= maxWords {
		kept = append(kept, sentence...)
	}

	if len(kept) == 0 {
		n := min(maxWords, len(words))
		return strings.Join(words[:n], " ") + "..."
	}
	out := strings.Join(kept, " ")
	if !endsSentence(out) {
		out += "."
	}
	return out
}

func endsSentence(w string) bool {
	w = strings.TrimRight(w, `"')]`)
	return strings.HasSuffix(w, ".") || strings.HasSuffix(w, "!") || strings.HasSuffix(w, "?")
}
