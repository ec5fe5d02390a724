package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/ccoach/internal/fetch"
)

func openTemp(t *testing.T) *FetchLog {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "nested", "fetchlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestFetchLog_RecordAndRecent(t *testing.T) {
	l := openTemp(t)
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	l.CycleSettled(fetch.Settlement{Resource: "insights", Cycle: 1, Outcome: fetch.OutcomeResolved,
		Started: base, Duration: 120 * time.Millisecond})
	l.CycleSettled(fetch.Settlement{Resource: "coach", Cycle: 1, Outcome: fetch.OutcomeFailed,
		Reason: "HTTP 500", Err: errors.New("status 500"), Started: base.Add(time.Second), Duration: 30 * time.Millisecond})
	l.CycleSettled(fetch.Settlement{Resource: "insights", Cycle: 2, Outcome: fetch.OutcomeSuperseded,
		Started: base.Add(2 * time.Second)})

	n, err := l.Count()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	all, err := l.Recent(10, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "superseded", all[0].Outcome, "newest first")
	require.Equal(t, "HTTP 500", all[1].Reason)
	require.Equal(t, 30*time.Millisecond, all[1].Duration)
	require.True(t, all[2].StartedAt.Equal(base))

	ins, err := l.Recent(10, "insights")
	require.NoError(t, err)
	require.Len(t, ins, 2)
	require.Equal(t, uint64(2), ins[0].Cycle)

	res, err := l.Resources()
	require.NoError(t, err)
	require.Equal(t, []string{"coach", "insights"}, res)
}

func TestFetchLog_OutcomeCountsAndPrune(t *testing.T) {
	l := openTemp(t)
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 500_000_000, time.UTC)

	require.NoError(t, l.Record(fetch.Settlement{Resource: "plan", Outcome: fetch.OutcomeFailed, Started: old}))
	require.NoError(t, l.Record(fetch.Settlement{Resource: "plan", Outcome: fetch.OutcomeResolved, Started: recent}))
	require.NoError(t, l.Record(fetch.Settlement{Resource: "plan", Outcome: fetch.OutcomeResolved, Started: recent.Add(time.Minute)}))

	counts, err := l.OutcomeCounts(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, map[string]map[string]int{"plan": {"resolved": 2}}, counts)

	removed, err := l.Prune(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	n, err := l.Count()
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestFetchLog_WritesAfterCloseAreDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fetchlog.db")
	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Record(fetch.Settlement{Resource: "coach", Outcome: fetch.OutcomeResolved}))
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	require.ErrorIs(t, l.Record(fetch.Settlement{Resource: "coach", Outcome: fetch.OutcomeDisposed}), ErrClosed)
	l.CycleSettled(fetch.Settlement{Resource: "coach", Outcome: fetch.OutcomeDisposed})

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	n, err := reopened.Count()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
