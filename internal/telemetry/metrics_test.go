package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"foodclean/internal"
)

func TestObserve(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := internal.RunSummary{RowsIn: 10, RowsOut: 7, RowsDropped: 3, StartedAt: at, FinishedAt: at.Add(2 * time.Second)}
	s.Column("sugars_100g").Nulled = 4
	s.Column("product_name").Changed = 6

	m := NewMetrics()
	m.Observe(s, internal.StatusSucceeded)

	require.Equal(t, 10.0, testutil.ToFloat64(m.rowsIn))
	require.Equal(t, 7.0, testutil.ToFloat64(m.rowsOut))
	require.Equal(t, 3.0, testutil.ToFloat64(m.rowsDropped))
	require.Equal(t, 2.0, testutil.ToFloat64(m.duration))
	require.Equal(t, float64(at.Add(2*time.Second).Unix()), testutil.ToFloat64(m.lastSuccess))
	require.Equal(t, 4.0, testutil.ToFloat64(m.nulled.WithLabelValues("sugars_100g")))
	require.Equal(t, 6.0, testutil.ToFloat64(m.changed.WithLabelValues("product_name")))

	m.Observe(internal.RunSummary{StartedAt: at, FinishedAt: at}, internal.StatusFailed)
	require.Equal(t, 1.0, testutil.ToFloat64(m.lastRunFailed))
	// a failed run keeps the previous success timestamp
	require.Equal(t, float64(at.Add(2*time.Second).Unix()), testutil.ToFloat64(m.lastSuccess))
	require.Equal(t, 0, testutil.CollectAndCount(m.nulled))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.Observe(internal.RunSummary{RowsIn: 1, RowsOut: 1}, internal.StatusSucceeded)

	path := filepath.Join(t.TempDir(), "foodclean.prom")
	require.NoError(t, m.WriteTextfile(path))
	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(blob), "foodclean_rows_in 1"))
}
