package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVerdict(t *testing.T) {
	t.Run("strong performance", func(t *testing.T) {
		v, ok := ExtractVerdict("FINAL VERDICT: The company shows STRONG performance today.")
		require.True(t, ok)
		assert.Equal(t, VerdictStrong, v)
	})

	t.Run("mixed performance", func(t *testing.T) {
		v, ok := ExtractVerdict("FINAL VERDICT: Overall the picture is MIXED performance.")
		require.True(t, ok)
		assert.Equal(t, VerdictMixed, v)
	})

	t.Run("poor performance", func(t *testing.T) {
		v, ok := ExtractVerdict("FINAL VERDICT: POOR performance given the selloff.")
		require.True(t, ok)
		assert.Equal(t, VerdictPoor, v)
	})

	t.Run("first stated rating wins", func(t *testing.T) {
		// Summary mentions MIXED while arguing but states POOR first
		v, ok := ExtractVerdict("FINAL VERDICT: POOR performance, not merely MIXED.")
		require.True(t, ok)
		assert.Equal(t, VerdictPoor, v)
	})

	t.Run("no rating present", func(t *testing.T) {
		_, ok := ExtractVerdict("The analysis is still in progress.")
		assert.False(t, ok)
	})

	t.Run("case sensitive", func(t *testing.T) {
		_, ok := ExtractVerdict("the company had a strong day")
		assert.False(t, ok)
	})
}

func TestVerdict_IsValid(t *testing.T) {
	assert.True(t, VerdictStrong.IsValid())
	assert.True(t, VerdictMixed.IsValid())
	assert.True(t, VerdictPoor.IsValid())
	assert.False(t, Verdict("GREAT").IsValid())
	assert.False(t, Verdict("").IsValid())
}
