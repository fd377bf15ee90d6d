package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"orbitflow/catalog"
	"orbitflow/config"
	"orbitflow/horizons"
	"orbitflow/logger"
	"orbitflow/models"
	"orbitflow/processor"
	"orbitflow/writer"
)

// Exporter drives the full pipeline once per configured body: fetch with
// adaptive chunking, extract, parse, convert, encode. Bodies are processed
// strictly in sequence; the first failure aborts the run with the body and
// window in the error. Files already written stay on disk.
type Exporter struct {
	config   *config.Config
	client   *horizons.Client
	uploader *writer.Uploader
	log      *logger.Log
}

// New creates an Exporter. The S3 uploader is only constructed when storage
// is enabled, so local-only runs need no AWS environment.
func New(cfg *config.Config) (*Exporter, error) {
	e := &Exporter{
		config: cfg,
		client: horizons.NewClient(cfg),
		log:    logger.GetLogger(),
	}

	if cfg.Storage.S3.Enabled {
		uploader, err := writer.NewUploader(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 uploader: %w", err)
		}
		e.uploader = uploader
	}

	return e, nil
}

// Specs expands the configured coverage window into one ExportSpec per body:
// planets at the planet cadence, moons at the moon cadence. The central body
// is never in either set.
func (e *Exporter) Specs() ([]models.ExportSpec, error) {
	requestedStop, err := e.config.Export.RequestedStopTime()
	if err != nil {
		return nil, err
	}

	var specs []models.ExportSpec
	for _, name := range catalog.Planets {
		specs = append(specs, models.ExportSpec{
			Name:      name,
			StartTime: e.config.Export.StartTime,
			StopTime:  requestedStop,
			StepSize:  e.config.Export.PlanetStep,
		})
	}
	for _, name := range catalog.Moons {
		specs = append(specs, models.ExportSpec{
			Name:      name,
			StartTime: e.config.Export.StartTime,
			StopTime:  requestedStop,
			StepSize:  e.config.Export.MoonStep,
		})
	}
	return specs, nil
}

// Run exports every configured body and writes the run manifest. It returns
// the manifest for reporting.
func (e *Exporter) Run(ctx context.Context) (*models.Manifest, error) {
	log := e.log.WithComponent("exporter")

	requestedStop, err := e.config.Export.RequestedStopTime()
	if err != nil {
		return nil, err
	}

	// Ensure output directory exists before any per-body export begins.
	outDir := e.config.Export.OutDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	specs, err := e.Specs()
	if err != nil {
		return nil, err
	}

	manifest := &models.Manifest{
		RunID:             uuid.New().String(),
		GeneratedAtUnix:   time.Now().Unix(),
		StartTime:         e.config.Export.StartTime,
		RequestedStopTime: requestedStop,
		YearsRequested:    e.config.Export.Years,
		MaxStopYear:       e.config.Export.MaxStopYear,
		PlanetStep:        e.config.Export.PlanetStep,
		MoonStep:          e.config.Export.MoonStep,
	}

	for _, spec := range specs {
		result, err := e.ExportOne(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("export %s [%s .. %s @ %s]: %w",
				spec.Name, spec.StartTime, spec.StopTime, spec.StepSize, err)
		}
		manifest.Files = append(manifest.Files, result)
		manifest.CoverageSummary.Observe(result)
	}

	manifestPath := filepath.Join(outDir, "manifest.json")
	if err := writer.WriteManifest(manifestPath, manifest); err != nil {
		return nil, err
	}
	log.WithFields(logger.Fields{"path": manifestPath, "bodies": len(manifest.Files)}).Info("manifest written")

	if e.uploader != nil {
		if err := e.uploader.UploadFile(ctx, manifestPath); err != nil {
			return nil, err
		}
	}

	return manifest, nil
}

// ExportOne runs the pipeline for a single body.
func (e *Exporter) ExportOne(ctx context.Context, spec models.ExportSpec) (models.ExportResult, error) {
	var result models.ExportResult

	command, err := catalog.Command(spec.Name)
	if err != nil {
		return result, err
	}
	bodyID, err := catalog.BodyID(spec.Name)
	if err != nil {
		return result, err
	}

	log := e.log.WithComponent("exporter").WithFields(logger.Fields{
		"body":    spec.Name,
		"command": command,
		"start":   spec.StartTime,
		"stop":    spec.StopTime,
		"step":    spec.StepSize,
	})
	log.Info("fetching body")

	// Large spans (600 years at 1 d cadence) exceed Horizons line limits;
	// the chunker bisects by calendar year while keeping the step fixed.
	text, effectiveStop, err := e.client.FetchVectorsChunked(
		ctx, command, spec.StartTime, spec.StopTime, spec.StepSize, e.config.Export.MaxStopYear)
	if err != nil {
		return result, err
	}

	samples, err := e.parseSections(text)
	if err != nil {
		return result, err
	}
	logger.AddSamplesParsed(len(samples))

	stepSeconds, err := writer.InferStepSeconds(samples)
	if err != nil {
		return result, err
	}

	outPath := filepath.Join(e.config.Export.OutDir, strings.ToLower(spec.Name)+".bin")
	if err := writer.WriteTable(outPath, bodyID, stepSeconds, samples); err != nil {
		return result, err
	}
	logger.IncrementTableWritten()

	if e.config.Writer.Formats.Parquet.Enabled {
		dumpPath := filepath.Join(e.config.Export.OutDir, strings.ToLower(spec.Name)+".parquet")
		if err := writer.WriteSampleDump(dumpPath, spec.Name, samples, e.config.Writer.Formats.Parquet); err != nil {
			return result, err
		}
	}

	if e.uploader != nil {
		if err := e.uploader.UploadFile(ctx, outPath); err != nil {
			return result, err
		}
	}

	result = models.ExportResult{
		Name:              spec.Name,
		BodyID:            bodyID,
		Path:              outPath,
		StartTime:         spec.StartTime,
		RequestedStopTime: spec.StopTime,
		EffectiveStopTime: effectiveStop,
		StartT0:           processor.JDToJ2000Seconds(samples[0].JD),
		StopT:             processor.JDToJ2000Seconds(samples[len(samples)-1].JD),
		StepSeconds:       stepSeconds,
		Count:             len(samples),
	}

	log.WithFields(logger.Fields{
		"path":           outPath,
		"count":          result.Count,
		"step_seconds":   result.StepSeconds,
		"start_t0":       result.StartT0,
		"effective_stop": result.EffectiveStopTime,
	}).Info("body exported")

	return result, nil
}

// parseSections extracts and parses every data section in the fetched text.
// A chunked fetch returns multiple stitched $$SOE/$$EOE sections; the splice
// only guarantees sentinel-correctness, so each section is parsed on its own
// and the samples concatenated in window order.
func (e *Exporter) parseSections(text string) ([]models.Sample, error) {
	if horizons.SectionCount(text) <= 1 {
		lines, err := horizons.ExtractBlock(text)
		if err != nil {
			return nil, err
		}
		return processor.ParseSamples(lines)
	}

	var all []models.Sample
	for _, section := range horizons.SplitSections(text) {
		lines, err := horizons.ExtractBlock(section)
		if err != nil {
			return nil, err
		}
		samples, err := processor.ParseSamples(lines)
		if err != nil {
			return nil, err
		}
		all = append(all, samples...)
	}
	if len(all) == 0 {
		return nil, processor.ErrNoSamples
	}
	return all, nil
}
