package observability

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSweep(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordSweep(SweepOutcome{
		Status:          "SUBMITTED",
		Lamports:        1_000_000,
		TokenTransfers:  2,
		AccountsCreated: 1,
		AccountsClosed:  3,
		Duration:        200 * time.Millisecond,
	}, true)
	m.RecordSweep(SweepOutcome{Status: "DRY_RUN", Lamports: 5, AccountsClosed: 1}, false)
	m.RecordSweep(SweepOutcome{Status: "EMPTY"}, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.WalletsProcessed.WithLabelValues("SUBMITTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WalletsProcessed.WithLabelValues("EMPTY")))
	assert.Equal(t, 1_000_000.0, testutil.ToFloat64(m.LamportsSwept))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TokenTransfers))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccountsCreated))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.AccountsClosed))
}

func TestRecordRPCCall(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordRPCCall("getBalance", 10*time.Millisecond, nil)
	m.RecordRPCCall("getBalance", 10*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RPCCallErrors.WithLabelValues("getBalance")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RPCCallLatency))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())
	m.RecordBatch(3*time.Second, time.Unix(1700000000, 0))
	m.RecordSweep(SweepOutcome{Status: "FAILED"}, false)

	path := filepath.Join(t.TempDir(), "sweep.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, "test_batch_duration_seconds 3"))
	assert.Contains(t, out, `test_sweep_wallets_total{status="FAILED"} 1`)
}
