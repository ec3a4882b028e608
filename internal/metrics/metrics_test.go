package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"hackathon-bot/internal/sheets"
)

func TestObserveOp(t *testing.T) {
	m := New()
	m.ObserveOp("projects", "update", time.Millisecond, nil)
	m.ObserveOp("projects", "update", time.Millisecond, &sheets.ConflictError{Table: "projects", ID: "a"})
	m.ObserveOp("projects", "get", time.Millisecond, &sheets.NotFoundError{Table: "projects", ID: "a"})
	m.ObserveOp("projects", "list", time.Millisecond, errors.New("boom"))

	cases := map[[3]string]float64{
		{"projects", "update", "ok"}:       1,
		{"projects", "update", "conflict"}: 1,
		{"projects", "get", "not_found"}:   1,
		{"projects", "list", "error"}:      1,
	}
	for labels, want := range cases {
		got := testutil.ToFloat64(m.operations.WithLabelValues(labels[0], labels[1], labels[2]))
		if got != want {
			t.Errorf("%v = %v, want %v", labels, got, want)
		}
	}
	if got := testutil.ToFloat64(m.conflicts.WithLabelValues("projects")); got != 1 {
		t.Errorf("conflicts = %v, want 1", got)
	}
}
