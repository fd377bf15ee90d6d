package models

import "testing"

func result(startT0, stopT float64, effectiveStop string) ExportResult {
	return ExportResult{StartT0: startT0, StopT: stopT, EffectiveStopTime: effectiveStop}
}

func TestCoverageSummaryObserve(t *testing.T) {
	var c CoverageSummary
	c.Observe(result(0, 100, "2500-01-01 12:00"))
	c.Observe(result(-50, 200, "2400-01-01 12:00"))
	c.Observe(result(25, 150, "2600-01-01 12:00"))

	if c.MinStartT0 == nil || *c.MinStartT0 != -50 {
		t.Errorf("unexpected min start_t0: %v", c.MinStartT0)
	}
	if c.MaxStartT0 == nil || *c.MaxStartT0 != 25 {
		t.Errorf("unexpected max start_t0: %v", c.MaxStartT0)
	}
	if c.MinStopT == nil || *c.MinStopT != 100 {
		t.Errorf("unexpected min stop_t: %v", c.MinStopT)
	}
	if c.MaxStopT == nil || *c.MaxStopT != 200 {
		t.Errorf("unexpected max stop_t: %v", c.MaxStopT)
	}
	if c.EffectiveStopTimeMin == nil || *c.EffectiveStopTimeMin != "2400-01-01 12:00" {
		t.Errorf("unexpected min effective stop: %v", c.EffectiveStopTimeMin)
	}
	if c.EffectiveStopTimeMax == nil || *c.EffectiveStopTimeMax != "2600-01-01 12:00" {
		t.Errorf("unexpected max effective stop: %v", c.EffectiveStopTimeMax)
	}
}

func TestCoverageSummaryEmptyIsAllNil(t *testing.T) {
	var c CoverageSummary
	if c.MinStartT0 != nil || c.MaxStopT != nil || c.EffectiveStopTimeMin != nil {
		t.Fatal("zero-value summary should report nil bounds")
	}
}
