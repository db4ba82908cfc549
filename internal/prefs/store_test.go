package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RatioChart/internal/model"
)

func TestStore_DefaultsThenPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "prefs.json")

	s, err := NewStore(path, Prefs{SymbolA: "TSLA", SymbolB: "MSTR"})
	require.NoError(t, err)
	got := s.Get()
	assert.Equal(t, "TSLA", got.SymbolA)
	assert.Equal(t, "MSTR", got.SymbolB)
	assert.Equal(t, model.OrderAOverB, got.Order)

	require.NoError(t, s.SetPair(" nvda", "amd ", model.OrderBOverA))

	reloaded, err := NewStore(path, Prefs{SymbolA: "TSLA", SymbolB: "MSTR"})
	require.NoError(t, err)
	got = reloaded.Get()
	assert.Equal(t, "NVDA", got.SymbolA)
	assert.Equal(t, "AMD", got.SymbolB)
	assert.Equal(t, model.OrderBOverA, got.Order)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestStore_RejectsInvalidPair(t *testing.T) {
	s, err := NewStore("", Prefs{SymbolA: "TSLA", SymbolB: "MSTR"})
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetPair("", "MSTR", ""), model.ErrInvalidRequest)
	assert.ErrorIs(t, s.SetPair("mstr", "MSTR", ""), model.ErrInvalidRequest)
	assert.Equal(t, "TSLA", s.Get().SymbolA)
}

func TestStore_FailedSaveKeepsPreviousPair(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "prefs.json"), Prefs{SymbolA: "TSLA", SymbolB: "MSTR"})
	require.NoError(t, err)

	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	s.filePath = filepath.Join(blocker, "prefs.json")

	assert.Error(t, s.SetPair("NVDA", "AMD", model.OrderAOverB))
	got := s.Get()
	assert.Equal(t, "TSLA", got.SymbolA)
	assert.Equal(t, "MSTR", got.SymbolB)
}
