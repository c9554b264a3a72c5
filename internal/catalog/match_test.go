package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medorder/internal/domain"
)

func sampleCatalog() []domain.Medicine {
	return []domain.Medicine{
		{ID: 1, Name: "Paracetamol 500mg", LocalizedName: "पैरासिटामोल", GenericName: "Acetaminophen"},
		{ID: 2, Name: "Crocin 650mg", LocalizedName: "क्रोसिन", GenericName: "Paracetamol"},
		{ID: 3, Name: "Dolo 650", LocalizedName: "डोलो", GenericName: "Paracetamol"},
		{ID: 4, Name: "Azithral 500", GenericName: "Azithromycin"},
	}
}

func TestContains_CaseInsensitive(t *testing.T) {
	assert.True(t, Contains("Paracetamol 500mg", "PARACET"))
	assert.True(t, Contains("पैरासिटामोल", "पैरासि"))
	assert.False(t, Contains("Dolo 650", "crocin"))
}

func TestMatchRank(t *testing.T) {
	m := sampleCatalog()[1]
	r, ok := MatchRank(m, "paracetamol")
	require.True(t, ok)
	assert.Equal(t, RankExact, r)

	r, ok = MatchRank(m, "croc")
	require.True(t, ok)
	assert.Equal(t, RankPrefix, r)

	r, ok = MatchRank(m, "650")
	require.True(t, ok)
	assert.Equal(t, RankSubstring, r)

	_, ok = MatchRank(m, "ibuprofen")
	assert.False(t, ok)

	_, ok = MatchRank(m, "   ")
	assert.False(t, ok)
}

func TestRank_DeterministicTieBreak(t *testing.T) {
	got := Rank(sampleCatalog(), "paracetamol")
	require.Len(t, got, 3)
	// Crocin and Dolo match exactly on generic name and are ordered by name;
	// the primary-name prefix match comes after them.
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
	assert.Equal(t, int64(1), got[2].ID)
}

func TestRank_LocalizedScript(t *testing.T) {
	got := Rank(sampleCatalog(), "डोलो")
	require.Len(t, got, 1)
	assert.Equal(t, "Dolo 650", got[0].Name)
}

func TestRank_NoMatch(t *testing.T) {
	assert.Empty(t, Rank(sampleCatalog(), "insulin"))
}
