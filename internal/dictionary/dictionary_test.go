package dictionary

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"layoutd/internal/layout"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "layoutd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPersonalWords(t *testing.T) {
	s := openTestStore(t)

	require.False(t, s.Contains("layoutd", layout.EN), "empty store contained a word")

	require.NoError(t, s.AddWord("layoutd", layout.EN))
	require.NoError(t, s.AddWord("layoutd", layout.EN), "re-adding must be a no-op")
	require.NoError(t, s.AddWord("вітаю", layout.UK))

	require.True(t, s.Contains("layoutd", layout.EN))
	require.False(t, s.Contains("layoutd", layout.UK), "word leaked across languages")

	words, err := s.Words(layout.EN)
	require.NoError(t, err)
	require.Equal(t, []string{"layoutd"}, words)

	require.NoError(t, s.RemoveWord("layoutd", layout.EN))
	require.False(t, s.Contains("layoutd", layout.EN), "removed word still present")
}

func TestCorrectionHistory(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.RecordCorrection("ghbdsn", "привіт", layout.UK, "convert"))
	require.NoError(t, s.RecordCorrection("руддщ", "hello", layout.EN, "fix-last"))

	n, err := s.CorrectionCount()
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	recent, err := s.RecentCorrections(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	require.Equal(t, "руддщ", recent[0].Original, "newest record first")
	require.Equal(t, "fix-last", recent[0].Kind)
	require.Equal(t, "привіт", recent[1].Converted)
	require.Equal(t, "uk", recent[1].Lang)

	for _, c := range recent {
		require.NotEmpty(t, c.ID)
		require.False(t, c.CreatedAt.IsZero())
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "layoutd.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}
