package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordMiningRun(t *testing.T) {
	t.Run("records successful run", func(t *testing.T) {
		before := testutil.ToFloat64(MiningRunsTotal.WithLabelValues(StatusOK))

		RecordMiningRun(StatusOK, 5*time.Millisecond, 15, 11)

		if after := testutil.ToFloat64(MiningRunsTotal.WithLabelValues(StatusOK)); after != before+1 {
			t.Errorf("ok runs = %v, want %v", after, before+1)
		}
		if got := testutil.ToFloat64(ItemsetsFound); got != 15 {
			t.Errorf("itemsets found = %v, want 15", got)
		}
		if got := testutil.ToFloat64(RulesFound); got != 11 {
			t.Errorf("rules found = %v, want 11", got)
		}
	})

	t.Run("failed run leaves gauges alone", func(t *testing.T) {
		RecordMiningRun(StatusOK, time.Millisecond, 3, 2)
		before := testutil.ToFloat64(MiningRunsTotal.WithLabelValues(StatusError))

		RecordMiningRun(StatusError, time.Millisecond, 0, 0)

		if after := testutil.ToFloat64(MiningRunsTotal.WithLabelValues(StatusError)); after != before+1 {
			t.Errorf("error runs = %v, want %v", after, before+1)
		}
		if got := testutil.ToFloat64(ItemsetsFound); got != 3 {
			t.Errorf("itemsets found = %v, want 3", got)
		}
	})
}

func TestRecordLevel(t *testing.T) {
	before := testutil.ToFloat64(CandidatesTotal.WithLabelValues("3"))

	RecordLevel(3, 2)
	RecordLevel(3, 5)

	if after := testutil.ToFloat64(CandidatesTotal.WithLabelValues("3")); after != before+7 {
		t.Errorf("level 3 candidates = %v, want %v", after, before+7)
	}
}
