package processor

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"orbitflow/models"
)

// ErrNoSamples reports that an entire data section yielded zero parseable
// rows. Individual non-matching lines (headers, blanks, stray text) are
// skipped silently; only a fully empty result is an error, since an empty
// table can never support interpolation.
var ErrNoSamples = errors.New("no vector samples parsed")

// Horizons CSV_FORMAT=YES VECTORS rows start with the JD, then the calendar
// label, then the state vector:
//
//	2451545.000000000, A.D. 2000-Jan-01 12:00:00.0000, X, Y, Z, VX, VY, VZ, ...
//
// The output is not strictly machine-CSV: spaces after commas, extra trailing
// columns (LT, RG, RR) and a trailing comma all occur. The pattern tolerates
// whitespace around separators and ignores anything past the eighth field.
var csvLineRegexp = regexp.MustCompile(
	`^\s*` +
		`(?P<jd>[-0-9.]+)\s*,\s*` +
		`(?P<cal>[^,]+?)\s*,\s*` +
		`(?P<x>[-0-9.Ee+]+)\s*,\s*` +
		`(?P<y>[-0-9.Ee+]+)\s*,\s*` +
		`(?P<z>[-0-9.Ee+]+)\s*,\s*` +
		`(?P<vx>[-0-9.Ee+]+)\s*,\s*` +
		`(?P<vy>[-0-9.Ee+]+)\s*,\s*` +
		`(?P<vz>[-0-9.Ee+]+)` +
		`(?:\s*,.*)?\s*$`)

var (
	jdIdx = csvLineRegexp.SubexpIndex("jd")
	xIdx  = csvLineRegexp.SubexpIndex("x")
	yIdx  = csvLineRegexp.SubexpIndex("y")
	vxIdx = csvLineRegexp.SubexpIndex("vx")
	vyIdx = csvLineRegexp.SubexpIndex("vy")
)

// ParseSamples extracts state-vector samples from the given lines, converting
// positions and velocities to meters. Z and VZ are dropped: the target is a
// 2D heliocentric simulation in the ecliptic plane. Lines that do not match
// the row pattern are skipped; zero matches overall returns ErrNoSamples.
func ParseSamples(lines []string) ([]models.Sample, error) {
	var samples []models.Sample
	for _, ln := range lines {
		m := csvLineRegexp.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		jd, err1 := strconv.ParseFloat(m[jdIdx], 64)
		x, err2 := strconv.ParseFloat(m[xIdx], 64)
		y, err3 := strconv.ParseFloat(m[yIdx], 64)
		vx, err4 := strconv.ParseFloat(m[vxIdx], 64)
		vy, err5 := strconv.ParseFloat(m[vyIdx], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			continue
		}
		samples = append(samples, models.Sample{
			JD: jd,
			X:  KmToMeters(x),
			Y:  KmToMeters(y),
			VX: KmPerSecToMetersPerSec(vx),
			VY: KmPerSecToMetersPerSec(vy),
		})
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("%w (check Horizons settings / row pattern)", ErrNoSamples)
	}
	return samples, nil
}
