package writer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	pqwriter "github.com/xitongsys/parquet-go/writer"

	"orbitflow/config"
	"orbitflow/models"
	"orbitflow/processor"
)

// SampleRecord is the parquet projection of one parsed sample, written for
// offline inspection with columnar tools. The binary table stays the only
// artifact the simulation consumes.
type SampleRecord struct {
	Body     string  `parquet:"name=body, type=BYTE_ARRAY, convertedtype=UTF8"`
	JD       float64 `parquet:"name=jd, type=DOUBLE"`
	TSeconds float64 `parquet:"name=t_seconds, type=DOUBLE"`
	X        float64 `parquet:"name=x, type=DOUBLE"`
	Y        float64 `parquet:"name=y, type=DOUBLE"`
	VX       float64 `parquet:"name=vx, type=DOUBLE"`
	VY       float64 `parquet:"name=vy, type=DOUBLE"`
}

// memoryFileWriter implements ParquetFile interface for in-memory writing
type memoryFileWriter struct {
	buffer *bytes.Buffer
}

func newMemoryFileWriter() *memoryFileWriter {
	return &memoryFileWriter{buffer: &bytes.Buffer{}}
}

func (mfw *memoryFileWriter) Create(name string) (source.ParquetFile, error) {
	return mfw, nil
}

func (mfw *memoryFileWriter) Open(name string) (source.ParquetFile, error) {
	return mfw, nil
}

func (mfw *memoryFileWriter) Seek(offset int64, whence int) (int64, error) {
	// Write-only buffer; parquet-go never seeks backwards on this path.
	return int64(mfw.buffer.Len()), nil
}

func (mfw *memoryFileWriter) Read(b []byte) (int, error) {
	return mfw.buffer.Read(b)
}

func (mfw *memoryFileWriter) Write(b []byte) (int, error) {
	return mfw.buffer.Write(b)
}

func (mfw *memoryFileWriter) Close() error {
	return nil
}

func (mfw *memoryFileWriter) Bytes() []byte {
	return mfw.buffer.Bytes()
}

// WriteSampleDump renders the sample sequence to a parquet file at path.
func WriteSampleDump(path, body string, samples []models.Sample, cfg config.ParquetConfig) error {
	fw := newMemoryFileWriter()

	pw, err := pqwriter.NewParquetWriter(fw, new(SampleRecord), 1)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	switch cfg.Compression {
	case "snappy":
		pw.CompressionType = parquet.CompressionCodec_SNAPPY
	case "gzip":
		pw.CompressionType = parquet.CompressionCodec_GZIP
	default:
		pw.CompressionType = parquet.CompressionCodec_UNCOMPRESSED
	}

	for _, s := range samples {
		record := SampleRecord{
			Body:     body,
			JD:       s.JD,
			TSeconds: processor.JDToJ2000Seconds(s.JD),
			X:        s.X,
			Y:        s.Y,
			VX:       s.VX,
			VY:       s.VY,
		}
		if err := pw.Write(record); err != nil {
			pw.WriteStop()
			return fmt.Errorf("failed to write parquet record: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	if err := os.WriteFile(path, fw.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write parquet file %s: %w", path, err)
	}
	return nil
}
