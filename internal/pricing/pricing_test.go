package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 1, WordCount("hello"))
	assert.Equal(t, 2, WordCount("hello, world!"))
	assert.Equal(t, 5, WordCount("one two\tthree\nfour  five"))
	assert.Equal(t, 2, WordCount("it's a (test)"), "punctuation is stripped before splitting")
}

func TestWordCountNonASCII(t *testing.T) {
	assert.Equal(t, 2, WordCount("中文 测试"), "CJK tokens count as words")
	assert.Equal(t, 3, WordCount("café naïve résumé"))
	assert.Equal(t, 2, WordCount("（中文） 测试！"), "non-ASCII punctuation is stripped")
}

func TestHumanizeCost(t *testing.T) {
	tests := []struct {
		words int
		mode  Mode
		want  string
	}{
		{100, ModeEasy, "100"},
		{100, ModeMedium, "120"},
		{100, ModeAggressive, "150"},
		{33, ModeMedium, "39.6"},
		{0, ModeAggressive, "0"},
	}
	for _, tt := range tests {
		got := HumanizeCost(tt.words, tt.mode)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"words=%d mode=%s got=%s want=%s", tt.words, tt.mode, got, tt.want)
	}
}

func TestCheckCost(t *testing.T) {
	assert.True(t, CheckCost(50).Equal(decimal.RequireFromString("5")))
	assert.True(t, CheckCost(33).Equal(decimal.RequireFromString("3.3")))
	assert.True(t, CheckCost(0).Equal(decimal.Zero))
}

func TestModeValid(t *testing.T) {
	assert.True(t, ModeEasy.Valid())
	assert.True(t, ModeMedium.Valid())
	assert.True(t, ModeAggressive.Valid())
	assert.False(t, Mode("turbo").Valid())
	assert.False(t, Mode("").Valid())
}

func TestCreditForAmount(t *testing.T) {
	assert.True(t, CreditForAmount("usd", 400).Equal(decimal.NewFromInt(500)))
	assert.True(t, CreditForAmount("USD", 14000).Equal(decimal.NewFromInt(25000)))
	assert.True(t, CreditForAmount("cny", 2900).Equal(decimal.NewFromInt(500)))
	assert.True(t, CreditForAmount("cad", 24800).Equal(decimal.NewFromInt(25000)))

	// Unlisted amounts and unsupported currencies credit zero.
	assert.True(t, CreditForAmount("usd", 123).IsZero())
	assert.True(t, CreditForAmount("eur", 400).IsZero())
}

func TestRateTable(t *testing.T) {
	usd := RateTable("USD")
	if assert.Len(t, usd, 6) {
		assert.Equal(t, "Entry Package", usd[0].Name)
		assert.Equal(t, int64(400), usd[0].Price)
		assert.Equal(t, int64(500), usd[0].Credits)
		assert.Equal(t, "Enterprise Package", usd[5].Name)
		assert.Equal(t, int64(25000), usd[5].Credits)
	}

	assert.Nil(t, RateTable("eur"))
}
