package exporter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"orbitflow/config"
	"orbitflow/models"
	"orbitflow/processor"
	"orbitflow/writer"
)

func testConfig(t *testing.T, url string) *config.Config {
	t.Helper()
	return &config.Config{
		Orbitflow: config.OrbitflowConfig{Name: "orbitflow-test", Version: "0.0.0"},
		Export: config.ExportConfig{
			OutDir:      t.TempDir(),
			StartTime:   "2000-01-01 12:00",
			Years:       1,
			PlanetStep:  "1 d",
			MoonStep:    "2 h",
			MaxStopYear: 0,
		},
		Source: config.SourceConfig{
			Horizons: config.HorizonsConfig{
				URL:     url,
				Timeout: 5 * time.Second,
			},
		},
	}
}

// fixtureServer serves a fixed-cadence VECTORS response: n daily samples
// starting at J2000, x beginning at 1.0e5 km.
func fixtureServer(n int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "API VERSION: 1.2")
		fmt.Fprintln(w, "$$SOE")
		for i := 0; i < n; i++ {
			jd := 2451545.0 + float64(i)
			fmt.Fprintf(w, "%.9f, A.D. 2000-Jan-%02d 12:00:00.0000, %.6E, 2.0E+05, 3.0E+03, 1.0E+01, 2.0E+01, 3.0E+00,\n",
				jd, i+1, 1.0e5+float64(i))
		}
		fmt.Fprintln(w, "$$EOE")
	}))
}

func TestExportOneEndToEnd(t *testing.T) {
	srv := fixtureServer(10)
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	exp, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	spec := models.ExportSpec{
		Name:      "Earth",
		StartTime: cfg.Export.StartTime,
		StopTime:  "2001-01-01 12:00",
		StepSize:  "1 d",
	}
	result, err := exp.ExportOne(context.Background(), spec)
	if err != nil {
		t.Fatalf("ExportOne failed: %v", err)
	}

	if result.BodyID != 3 || result.Count != 10 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.StartT0 != 0.0 {
		t.Errorf("unexpected start_t0: %v", result.StartT0)
	}
	if result.StepSeconds != 86400.0 {
		t.Errorf("unexpected step: %v", result.StepSeconds)
	}
	if result.StopT != 9*86400.0 {
		t.Errorf("unexpected stop_t: %v", result.StopT)
	}

	table, err := writer.ReadTable(result.Path)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if len(table.Records) != 10 {
		t.Fatalf("unexpected record count: %d", len(table.Records))
	}
	if table.StepSeconds != 86400.0 || table.StartT0 != 0.0 {
		t.Errorf("unexpected header: step=%v t0=%v", table.StepSeconds, table.StartT0)
	}
	// Stored x is the fixture's x in kilometers times 1000.
	if table.Records[0].X != 1.0e5*1000 {
		t.Errorf("unexpected first x: %v", table.Records[0].X)
	}
	if filepath.Base(result.Path) != "earth.bin" {
		t.Errorf("unexpected output path: %s", result.Path)
	}
}

func TestExportOneSingleSampleFails(t *testing.T) {
	srv := fixtureServer(1)
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	exp, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	spec := models.ExportSpec{Name: "Mars", StartTime: cfg.Export.StartTime, StopTime: "2001-01-01 12:00", StepSize: "1 d"}
	_, err = exp.ExportOne(context.Background(), spec)
	if !errors.Is(err, writer.ErrTooFewSamples) {
		t.Fatalf("expected ErrTooFewSamples, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(cfg.Export.OutDir, "mars.bin")); !os.IsNotExist(statErr) {
		t.Fatal("degenerate export must not produce a file")
	}
}

func TestExportOneEmptySectionFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "header\n$$SOE\nno data rows here\n$$EOE\n")
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	exp, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	spec := models.ExportSpec{Name: "Venus", StartTime: cfg.Export.StartTime, StopTime: "2001-01-01 12:00", StepSize: "1 d"}
	_, err = exp.ExportOne(context.Background(), spec)
	if !errors.Is(err, processor.ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples, got %v", err)
	}
}

func TestExportOneErrorPageSurfacesPreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "No ephemeris for target prior to A.D. 1599")
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	exp, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	spec := models.ExportSpec{Name: "Titan", StartTime: cfg.Export.StartTime, StopTime: "2001-01-01 12:00", StepSize: "2 h"}
	_, err = exp.ExportOne(context.Background(), spec)
	if err == nil {
		t.Fatal("expected error for error page")
	}
}

func TestExportOneRejectsCentralBody(t *testing.T) {
	cfg := testConfig(t, "http://unused.invalid")
	exp, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	spec := models.ExportSpec{Name: "Sun"}
	if _, err := exp.ExportOne(context.Background(), spec); err == nil {
		t.Fatal("expected configuration error for central body")
	}
}

func TestExportOneRejectsUnmappedBody(t *testing.T) {
	cfg := testConfig(t, "http://unused.invalid")
	exp, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	spec := models.ExportSpec{Name: "Pluto"}
	if _, err := exp.ExportOne(context.Background(), spec); err == nil {
		t.Fatal("expected configuration error for unmapped body")
	}
}

func TestRunWritesManifestAndAggregates(t *testing.T) {
	srv := fixtureServer(10)
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	exp, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	manifest, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Eight planets plus six moons, the Sun excluded.
	if len(manifest.Files) != 14 {
		t.Fatalf("unexpected body count: %d", len(manifest.Files))
	}
	if manifest.RunID == "" {
		t.Error("manifest missing run id")
	}
	if manifest.RequestedStopTime != "2001-01-01 12:00" {
		t.Errorf("unexpected requested stop: %s", manifest.RequestedStopTime)
	}

	cov := manifest.CoverageSummary
	if cov.MinStartT0 == nil || *cov.MinStartT0 != 0.0 {
		t.Errorf("unexpected min start_t0: %v", cov.MinStartT0)
	}
	if cov.MaxStopT == nil || *cov.MaxStopT != 9*86400.0 {
		t.Errorf("unexpected max stop_t: %v", cov.MaxStopT)
	}

	if _, err := os.Stat(filepath.Join(cfg.Export.OutDir, "manifest.json")); err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	for _, entry := range manifest.Files {
		if _, err := os.Stat(entry.Path); err != nil {
			t.Errorf("missing table for %s: %v", entry.Name, err)
		}
	}
}

func TestSpecsUseConfiguredCadences(t *testing.T) {
	cfg := testConfig(t, "http://unused.invalid")
	exp, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	specs, err := exp.Specs()
	if err != nil {
		t.Fatalf("Specs failed: %v", err)
	}
	for _, s := range specs {
		switch s.Name {
		case "Moon", "Io", "Europa", "Ganymede", "Callisto", "Titan":
			if s.StepSize != "2 h" {
				t.Errorf("%s step = %s, want moon cadence", s.Name, s.StepSize)
			}
		default:
			if s.StepSize != "1 d" {
				t.Errorf("%s step = %s, want planet cadence", s.Name, s.StepSize)
			}
		}
	}
}
