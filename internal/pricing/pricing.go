package pricing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Mode selects the humanization strength and with it the per-word multiplier.
type Mode string

const (
	ModeEasy       Mode = "easy"
	ModeMedium     Mode = "medium"
	ModeAggressive Mode = "aggressive"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeEasy, ModeMedium, ModeAggressive:
		return true
	}
	return false
}

// MinBillableWords is the smallest word count accepted for billing. Inputs at
// or below MinBillableWords-1 words are rejected, not billed.
const MinBillableWords = 21

var (
	multiplierEasy       = decimal.RequireFromString("1.0")
	multiplierMedium     = decimal.RequireFromString("1.2")
	multiplierAggressive = decimal.RequireFromString("1.5")

	checkRate = decimal.RequireFromString("0.1")

	// Keep letters and digits of any script; Go's \w is ASCII-only and would
	// strip CJK and accented text as punctuation.
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// WordCount counts whitespace-delimited tokens after stripping punctuation.
func WordCount(text string) int {
	stripped := punctuation.ReplaceAllString(text, "")
	return len(strings.Fields(stripped))
}

// HumanizeCost returns word_count x mode multiplier. Unknown modes fall back
// to the easy multiplier; callers validate the mode before billing.
func HumanizeCost(wordCount int, mode Mode) decimal.Decimal {
	multiplier := multiplierEasy
	switch mode {
	case ModeMedium:
		multiplier = multiplierMedium
	case ModeAggressive:
		multiplier = multiplierAggressive
	}
	return decimal.NewFromInt(int64(wordCount)).Mul(multiplier)
}

// CheckCost returns word_count x 0.1.
func CheckCost(wordCount int) decimal.Decimal {
	return decimal.NewFromInt(int64(wordCount)).Mul(checkRate)
}
