package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leih-lokal/kiosk-service/internal/errs"
)

func TestSelection_Add(t *testing.T) {
	t.Parallel()
	var sel Selection

	require.NoError(t, sel.Add("a", 3))
	require.NoError(t, sel.Add("b", 3))
	require.NoError(t, sel.Add("c", 3))
	require.Equal(t, []string{"a", "b", "c"}, sel.ItemIDs)
	require.Equal(t, 1, sel.CopyCounts["a"])

	// the fourth distinct item is rejected and the selection stays intact
	err := sel.Add("d", 3)
	require.ErrorIs(t, err, errs.ErrCapacityExceeded)
	require.Equal(t, []string{"a", "b", "c"}, sel.ItemIDs)

	// re-adding a selected item is a no-op even at capacity
	require.NoError(t, sel.Add("b", 3))
	require.Equal(t, []string{"a", "b", "c"}, sel.ItemIDs)
}

func TestSelection_Remove(t *testing.T) {
	t.Parallel()
	var sel Selection
	require.NoError(t, sel.Add("a", 3))
	require.NoError(t, sel.Add("b", 3))

	sel.Remove("a")
	require.Equal(t, []string{"b"}, sel.ItemIDs)
	require.NotContains(t, sel.CopyCounts, "a")

	// removing something not selected changes nothing
	sel.Remove("zz")
	require.Equal(t, []string{"b"}, sel.ItemIDs)
}

func TestSelection_SetCopies(t *testing.T) {
	t.Parallel()
	var sel Selection
	require.NoError(t, sel.Add("a", 3))

	require.NoError(t, sel.SetCopies("a", 2))
	require.Equal(t, 2, sel.CopyCounts["a"])

	require.ErrorIs(t, sel.SetCopies("a", 0), errs.ErrInvalidInput)
	require.ErrorIs(t, sel.SetCopies("b", 1), errs.ErrNotFound)
}
