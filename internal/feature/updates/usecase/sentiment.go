package usecase

import (
	"context"
	"log/slog"
	"math"

	"competitor_backend/internal/feature/updates/domain/entity"
	"competitor_backend/internal/shared/textnorm"
)

const (
	// PositiveThreshold を超えるスコアは positive です。
	PositiveThreshold = 0.05
	// NegativeThreshold を下回るスコアは negative です。
	NegativeThreshold = -0.05
)

// sentimentLexicon はトークンごとの極性の重みです。
var sentimentLexicon = map[string]float64{
	// positive
	"success": 2, "successful": 2, "growth": 2, "grows": 2, "profit": 2, "profitable": 2,
	"win": 2, "wins": 2, "achievement": 2, "innovative": 2, "breakthrough": 3, "leading": 1,
	"best": 2, "excellent": 3, "strong": 2, "gains": 2, "record": 1, "expands": 1,
	"expansion": 1, "surge": 2, "award": 2, "raises": 1, "launches": 1, "milestone": 2,
	// negative
	"loss": -2, "losses": -2, "decline": -2, "declines": -2, "problem": -2, "issue": -1,
	"issues": -1, "concern": -1, "concerns": -1, "struggle": -2, "struggles": -2, "fail": -2,
	"fails": -2, "failure": -2, "weak": -2, "crisis": -3, "lawsuit": -2, "sued": -2,
	"drop": -2, "drops": -2, "falls": -2, "layoffs": -3, "breach": -3, "outage": -2,
	"fined": -2, "investigation": -1, "recall": -2, "resigns": -1, "bankruptcy": -3,
}

// SentimentResult は極性判定の結果です。
type SentimentResult struct {
	Label entity.Sentiment
	Score float64
}

// SentimentJudge はAIによる極性判定です。設定されている場合は辞書ベースの結果を上書きします。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SentimentJudge interface {
	JudgeSentiment(ctx context.Context, title, summary string) (entity.Sentiment, float64, error)
}

// SentimentScorer は辞書ベースの極性判定器です。常に利用可能で決定的です。
type SentimentScorer struct {
	judge SentimentJudge
}

// NewSentimentScorer は judge が nil の場合は辞書ベースのみで判定します。
func NewSentimentScorer(judge SentimentJudge) *SentimentScorer {
	return &SentimentScorer{judge: judge}
}

// Lexicon は重みの合計をトークン数で割り、[-1, 1] に丸めたスコアを返します。
func (s *SentimentScorer) Lexicon(title, summary string) SentimentResult {
	tokens := textnorm.Tokens(title + " " + summary)
	if len(tokens) == 0 {
		return SentimentResult{Label: entity.SentimentNeutral}
	}
	var sum float64
	for _, t := range tokens {
		sum += sentimentLexicon[t]
	}
	score := math.Max(-1, math.Min(1, sum/float64(len(tokens))))
	return SentimentResult{Label: labelFor(score), Score: score}
}

// Score は最終的な極性と、常に計算される辞書ベースの結果を返します。
// AI判定に失敗した場合は辞書ベースの結果をそのまま使います。
func (s *SentimentScorer) Score(ctx context.Context, title, summary string) (final, lexicon SentimentResult) {
	lexicon = s.Lexicon(title, summary)
	if s.judge == nil {
		return lexicon, lexicon
	}
	label, score, err := s.judge.JudgeSentiment(ctx, title, summary)
	if err != nil || !validSentiment(label) {
		slog.Warn("sentiment judge failed, using lexicon", "component", "sentiment", "error", err, "label", label)
		return lexicon, lexicon
	}
	score = math.Max(-1, math.Min(1, score))
	return SentimentResult{Label: label, Score: score}, lexicon
}

func labelFor(score float64) entity.Sentiment {
	switch {
	case score > PositiveThreshold:
		return entity.SentimentPositive
	case score < NegativeThreshold:
		return entity.SentimentNegative
	default:
		return entity.SentimentNeutral
	}
}

func validSentiment(s entity.Sentiment) bool {
	return s == entity.SentimentPositive || s == entity.SentimentNeutral || s == entity.SentimentNegative
}
