package horizons

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"orbitflow/logger"
)

// FetchVectorsChunked retrieves VECTORS output for one body, automatically
// bisecting the requested time range when Horizons refuses due to its output
// line limit. The step size is a user-visible cadence choice and is never
// altered; only the span per request shrinks.
//
// If maxStopYear is positive, the stop time's calendar year is clamped to it
// before the first request, since Horizons hard-fails on spans beyond its
// ephemeris coverage for some targets. The effective stop time actually used
// is returned alongside the text so the manifest can reflect reality.
//
// The returned text is either a single data section or a concatenation of
// $$SOE/$$EOE sections (headers of the right-hand chunks removed), which
// downstream parsing treats as one longer section. Non-size-limit responses,
// including Horizons error text, are returned unmodified.
func (c *Client) FetchVectorsChunked(ctx context.Context, command, startTime, stopTime, stepSize string, maxStopYear int) (string, string, error) {
	effectiveStop, err := clampStopTime(startTime, stopTime, maxStopYear)
	if err != nil {
		return "", "", err
	}

	text, err := c.fetchText(ctx, c.BuildURL(command, startTime, effectiveStop, stepSize))
	if err != nil {
		return "", "", err
	}

	// Anything but the line-limit refusal is final: data or an error the
	// caller surfaces with context.
	if !IsSizeLimitError(text) {
		return text, effectiveStop, nil
	}

	startYear, err := yearOf(startTime)
	if err != nil {
		return "", "", err
	}
	stopYear, err := yearOf(effectiveStop)
	if err != nil {
		return "", "", err
	}

	if stopYear <= startYear {
		// A single-year window is the bisection floor; surface the
		// original refusal so the caller fails with full context.
		return text, effectiveStop, nil
	}

	midYear := (startYear + stopYear) / 2
	if midYear <= startYear {
		// Adjacent years: the midpoint would coincide with the start
		// and the recursion would never shrink the window. Nothing
		// left to bisect, so the refusal surfaces.
		return text, effectiveStop, nil
	}
	midTime := fmt.Sprintf("%d-01-01 12:00", midYear)

	c.log.WithComponent("horizons_client").WithFields(logger.Fields{
		"command": command,
		"start":   startTime,
		"stop":    effectiveStop,
		"mid":     midTime,
		"step":    stepSize,
		"reason":  "line_limit",
	}).Info("bisecting request window")
	logger.IncrementSplit()

	left, _, err := c.FetchVectorsChunked(ctx, command, startTime, midTime, stepSize, maxStopYear)
	if err != nil {
		return "", "", err
	}
	right, rightStop, err := c.FetchVectorsChunked(ctx, command, midTime, effectiveStop, stepSize, maxStopYear)
	if err != nil {
		return "", "", err
	}

	// Splice the halves back inside sentinel pairs. A half that still
	// carries error text passes through untouched and fails downstream
	// extraction with its own diagnostics.
	stitched := spliceBlock(left) + spliceBlock(right)
	return stitched, rightStop, nil
}

// clampStopTime caps the stop time's year at maxStopYear (0 disables
// clamping). The clamped year never drops below the start year so the window
// stays non-empty.
func clampStopTime(startTime, stopTime string, maxStopYear int) (string, error) {
	if maxStopYear <= 0 {
		return stopTime, nil
	}

	startYear, err := yearOf(startTime)
	if err != nil {
		return "", err
	}
	stopYear, err := yearOf(stopTime)
	if err != nil {
		return "", err
	}

	if stopYear > maxStopYear {
		clamped := maxStopYear
		if clamped < startYear {
			clamped = startYear
		}
		return withYear(stopTime, clamped), nil
	}
	return stopTime, nil
}

// yearOf extracts the calendar year from a "YYYY-MM-DD HH:MM" timestamp.
func yearOf(ts string) (int, error) {
	head, _, ok := strings.Cut(ts, "-")
	if !ok {
		return 0, fmt.Errorf("timestamp %q is not in 'YYYY-MM-DD HH:MM' form", ts)
	}
	year, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("timestamp %q has an invalid year: %w", ts, err)
	}
	return year, nil
}

// withYear replaces the year of a timestamp, keeping month/day/time as-is.
func withYear(ts string, year int) string {
	_, rest, ok := strings.Cut(ts, "-")
	if !ok {
		return ts
	}
	return fmt.Sprintf("%d-%s", year, rest)
}
