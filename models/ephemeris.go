package models

// ExportSpec identifies one retrieval job. Start and stop times use the fixed
// calendar form "YYYY-MM-DD HH:MM" that the rest of the pipeline assumes when
// clamping and bisecting windows. Constructed once per body, never mutated.
type ExportSpec struct {
	Name      string
	StartTime string
	StopTime  string
	StepSize  string
}

// Sample is one state-vector row after unit conversion. JD stays in Julian
// Date form until the encoder derives the time origin; positions are meters,
// velocities meters per second. Z/VZ are dropped upstream (2D projection).
type Sample struct {
	JD float64
	X  float64
	Y  float64
	VX float64
	VY float64
}

// ExportResult is the per-body manifest entry. It is reporting metadata only;
// none of it is persisted inside the binary table beyond what the header
// already carries.
type ExportResult struct {
	Name              string  `json:"name"`
	BodyID            uint32  `json:"body_id"`
	Path              string  `json:"path"`
	StartTime         string  `json:"start_time"`
	RequestedStopTime string  `json:"requested_stop_time"`
	EffectiveStopTime string  `json:"effective_stop_time"`
	StartT0           float64 `json:"start_t0"`
	StopT             float64 `json:"stop_t"`
	StepSeconds       float64 `json:"step_seconds"`
	Count             int     `json:"count"`
}

// CoverageSummary tracks run-wide min/max coverage so a downstream packaging
// step can verify the exported window without reopening binary files.
type CoverageSummary struct {
	MinStartT0           *float64 `json:"min_start_t0"`
	MaxStartT0           *float64 `json:"max_start_t0"`
	MinStopT             *float64 `json:"min_stop_t"`
	MaxStopT             *float64 `json:"max_stop_t"`
	EffectiveStopTimeMin *string  `json:"effective_stop_time_min"`
	EffectiveStopTimeMax *string  `json:"effective_stop_time_max"`
}

// Observe folds one body's result into the running summary.
func (c *CoverageSummary) Observe(r ExportResult) {
	c.MinStartT0 = minFloat(c.MinStartT0, r.StartT0)
	c.MaxStartT0 = maxFloat(c.MaxStartT0, r.StartT0)
	c.MinStopT = minFloat(c.MinStopT, r.StopT)
	c.MaxStopT = maxFloat(c.MaxStopT, r.StopT)
	c.EffectiveStopTimeMin = minString(c.EffectiveStopTimeMin, r.EffectiveStopTime)
	c.EffectiveStopTimeMax = maxString(c.EffectiveStopTimeMax, r.EffectiveStopTime)
}

// Manifest is the run-wide metadata record written next to the binary tables.
type Manifest struct {
	RunID             string          `json:"run_id"`
	GeneratedAtUnix   int64           `json:"generated_at_unix"`
	StartTime         string          `json:"start_time"`
	RequestedStopTime string          `json:"requested_stop_time"`
	YearsRequested    int             `json:"years_requested"`
	MaxStopYear       int             `json:"max_stop_year"`
	PlanetStep        string          `json:"planet_step"`
	MoonStep          string          `json:"moon_step"`
	Files             []ExportResult  `json:"files"`
	CoverageSummary   CoverageSummary `json:"coverage_summary"`
}

func minFloat(cur *float64, v float64) *float64 {
	if cur == nil || v < *cur {
		return &v
	}
	return cur
}

func maxFloat(cur *float64, v float64) *float64 {
	if cur == nil || v > *cur {
		return &v
	}
	return cur
}

func minString(cur *string, v string) *string {
	if cur == nil || v < *cur {
		return &v
	}
	return cur
}

func maxString(cur *string, v string) *string {
	if cur == nil || v > *cur {
		return &v
	}
	return cur
}
