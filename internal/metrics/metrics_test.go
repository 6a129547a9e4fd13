package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRegisterAndGather(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}

	m.IncRequest("rank", "200")
	m.ObserveDuration("rank", 0.002)
	m.AddCandidatesScored(12)
	m.IncTransition(OpApply, ResultOK)
	m.IncFallback()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() returned error: %v", err)
	}

	want := map[string]bool{
		MetricRequestsTotal:          false,
		MetricDurationSeconds:        false,
		MetricCandidatesScoredTotal:  false,
		MetricConfigTransitionsTotal: false,
		MetricActiveFallbacksTotal:   false,
	}
	for _, f := range families {
		if _, ok := want[f.GetName()]; ok {
			want[f.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("metric %s not gathered", name)
		}
	}
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := New().Register(reg); err != nil {
		t.Fatal(err)
	}
	if err := New().Register(reg); err == nil {
		t.Error("second Register() should fail")
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.AddCandidatesScored(3)
	m.AddCandidatesScored(4)
	m.AddCandidatesScored(-1)
	if got := counterValue(t, m.candidatesScored); got != 7 {
		t.Errorf("candidates scored = %v, want 7", got)
	}

	m.IncTransition(OpDelete, ResultForbidden)
	m.IncTransition(OpDelete, ResultForbidden)
	c, err := m.transitions.GetMetricWithLabelValues(OpDelete, ResultForbidden)
	if err != nil {
		t.Fatal(err)
	}
	if got := counterValue(t, c); got != 2 {
		t.Errorf("delete/forbidden = %v, want 2", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.IncRequest("rank", "200")
	m.ObserveDuration("rank", 1)
	m.AddCandidatesScored(1)
	m.IncTransition(OpSave, ResultOK)
	m.IncFallback()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var out dto.Metric
	if err := c.Write(&out); err != nil {
		t.Fatal(err)
	}
	return out.GetCounter().GetValue()
}
