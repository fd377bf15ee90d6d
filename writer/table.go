package writer

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"orbitflow/models"
	"orbitflow/processor"
)

// Binary table layout, little-endian, shared with the simulation loader:
//
//	magic        [8]  "DEOEPH1\0"
//	version      u32  = 1
//	body_id      u32
//	step_seconds f64
//	start_t0     f64  (seconds since J2000)
//	count        u32
//	reserved     u32  (0)
//	samples[count] of x, y, vx, vy as f64
var Magic = [8]byte{'D', 'E', 'O', 'E', 'P', 'H', '1', 0}

const Version uint32 = 1

// ErrTooFewSamples rejects tables that could never support interpolation.
// Cadence inference alone needs two points.
var ErrTooFewSamples = errors.New("need at least 2 samples for interpolation")

type tableHeader struct {
	Magic       [8]byte
	Version     uint32
	BodyID      uint32
	StepSeconds float64
	StartT0     float64
	Count       uint32
	Reserved    uint32
}

// Record is one stored sample: position in meters, velocity in m/s.
type Record struct {
	X  float64
	Y  float64
	VX float64
	VY float64
}

// Table is the decoded form of a binary ephemeris file, used by tests and as
// a reference for the consuming loader.
type Table struct {
	Version     uint32
	BodyID      uint32
	StepSeconds float64
	StartT0     float64
	Records     []Record
}

// InferStepSeconds derives the sampling cadence from the gap between the
// first two samples' raw JDs. The rest of the sequence is assumed uniform and
// is not re-checked; a bisection seam with uneven spacing would go unnoticed.
func InferStepSeconds(samples []models.Sample) (float64, error) {
	if len(samples) < 2 {
		return 0, ErrTooFewSamples
	}
	return (samples[1].JD - samples[0].JD) * processor.SecondsPerDay, nil
}

// WriteTable encodes the sample sequence into a binary table at path,
// overwriting any existing file. The time origin is derived from the first
// sample's JD. Any write failure is returned; a partial file is never
// reported as success.
func WriteTable(path string, bodyID uint32, stepSeconds float64, samples []models.Sample) error {
	if len(samples) < 2 {
		return fmt.Errorf("%w (got %d)", ErrTooFewSamples, len(samples))
	}

	startT0 := processor.JDToJ2000Seconds(samples[0].JD)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create table file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := encodeTable(w, bodyID, stepSeconds, startT0, samples); err != nil {
		f.Close()
		return fmt.Errorf("failed to write table %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush table %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close table %s: %w", path, err)
	}
	return nil
}

func encodeTable(w io.Writer, bodyID uint32, stepSeconds, startT0 float64, samples []models.Sample) error {
	header := tableHeader{
		Magic:       Magic,
		Version:     Version,
		BodyID:      bodyID,
		StepSeconds: stepSeconds,
		StartT0:     startT0,
		Count:       uint32(len(samples)),
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	for _, s := range samples {
		rec := Record{X: s.X, Y: s.Y, VX: s.VX, VY: s.VY}
		if err := binary.Write(w, binary.LittleEndian, rec); err != nil {
			return err
		}
	}
	return nil
}

// ReadTable decodes a binary ephemeris file. It validates the magic tag and
// version so a consumer never silently misreads a foreign file.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var header tableHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read table header: %w", err)
	}
	if !bytes.Equal(header.Magic[:], Magic[:]) {
		return nil, fmt.Errorf("table %s has unexpected magic %q", path, header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("table %s has unsupported version %d", path, header.Version)
	}

	table := &Table{
		Version:     header.Version,
		BodyID:      header.BodyID,
		StepSeconds: header.StepSeconds,
		StartT0:     header.StartT0,
		Records:     make([]Record, header.Count),
	}
	for i := range table.Records {
		if err := binary.Read(r, binary.LittleEndian, &table.Records[i]); err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", i, err)
		}
	}
	return table, nil
}
