package tui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/foundryfind/ff/pkg/match"
	"github.com/foundryfind/ff/pkg/store"
)

func TestSelectResultRankOutOfRange(t *testing.T) {
	results := []match.MatchedItem{{Item: store.Item{Index: 0}}}

	_, ok := selectResult(results, 0)
	require.False(t, ok)

	_, ok = selectResult(results, 2)
	require.False(t, ok)
}

func TestSelectResultValidRank(t *testing.T) {
	results := []match.MatchedItem{
		{Item: store.Item{Index: 7}},
		{Item: store.Item{Index: 9}},
	}

	item, ok := selectResult(results, 2)
	require.True(t, ok)
	require.Equal(t, uint32(9), item.Index)
}

func TestDurationMSFallsBackOnZero(t *testing.T) {
	require.Equal(t, 250*time.Millisecond, durationMS(0, 250*time.Millisecond))
	require.Equal(t, 50*time.Millisecond, durationMS(50, 250*time.Millisecond))
}

func TestTerminalWidthFallsBackForNonTTY(t *testing.T) {
	var buf bytes.Buffer
	require.Equal(t, defaultLineWidth, terminalWidth(&buf))
}

func TestSessionSnapshotIsIndependentCopy(t *testing.T) {
	sess := &session{}
	sess.onResult([]match.MatchedItem{{Item: store.Item{Index: 1}}})

	snap := sess.snapshot()
	snap[0].Item.Index = 99

	require.Equal(t, uint32(1), sess.snapshot()[0].Item.Index)
}
