package processor

// Horizons returns state vectors in km and km/s; the simulation works in
// meters. The time axis is seconds since J2000 (2000-01-01 12:00:00), with
// the JD treated as a single uniform time scale. TT/UTC offsets and leap
// seconds are ignored; at interpolation cadence the error is negligible.
const (
	J2000JD       = 2451545.0
	SecondsPerDay = 86400.0
	KmToM         = 1000.0
)

// KmToMeters converts a distance in kilometers to meters.
func KmToMeters(km float64) float64 {
	return km * KmToM
}

// KmPerSecToMetersPerSec converts a velocity in km/s to m/s.
func KmPerSecToMetersPerSec(kms float64) float64 {
	return kms * KmToM
}

// JDToJ2000Seconds maps a Julian Date to seconds since the J2000 epoch.
func JDToJ2000Seconds(jd float64) float64 {
	return (jd - J2000JD) * SecondsPerDay
}
