package jit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefTableReserveIsIdempotent(t *testing.T) {
	tbl := newDefTable()
	a := tbl.Reserve("f")
	b := tbl.Reserve("f")
	require.Equal(t, a, b, "reserving the same name twice must return the same cell")
}

func TestDefTableReserveInitializesToFallback(t *testing.T) {
	tbl := newDefTable()
	tbl.Reserve("f")
	addr, filled := tbl.Current("f")
	require.False(t, filled)
	require.Equal(t, fallbackEntry(), addr)
}

func TestDefTableFillUpdatesExistingCell(t *testing.T) {
	tbl := newDefTable()
	cellAddr := tbl.Reserve("f")

	tbl.Fill("f", 0xdeadbeef)

	addr, filled := tbl.Current("f")
	require.True(t, filled)
	require.EqualValues(t, 0xdeadbeef, addr)
	require.Equal(t, cellAddr, tbl.Reserve("f"), "filling must not relocate the cell")
}

func TestDefTableCurrentOnUnknownName(t *testing.T) {
	tbl := newDefTable()
	_, ok := tbl.Current("nope")
	require.False(t, ok)
}

func TestFuncEntryIsStable(t *testing.T) {
	require.Equal(t, funcEntry(hostQuit), funcEntry(hostQuit))
}
