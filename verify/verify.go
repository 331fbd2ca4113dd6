package verify

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"oscreplay/buffer"
)

const maxReportedMismatches = 10

// Report compares a replayed capture with the capture it was played from.
type Report struct {
	OriginalCount int
	ReplayedCount int
	Compared      int
	Mismatches    []int

	// Timing error in milliseconds: how far each replayed message landed from
	// its recorded offset, scaled by speed.
	MeanErrorMs   float64
	StdDevErrorMs float64
	MaxAbsErrorMs float64
}

func (r Report) OK() bool {
	return r.OriginalCount == r.ReplayedCount && len(r.Mismatches) == 0
}

func Compare(original, replayed *buffer.Buffer, speed float64) Report {
	rep := Report{
		OriginalCount: original.Len(),
		ReplayedCount: replayed.Len(),
	}
	n := min(rep.OriginalCount, rep.ReplayedCount)
	rep.Compared = n
	if n == 0 {
		return rep
	}
	if speed <= 0 {
		speed = 1
	}

	orig0 := original.Messages[0].Timestamp
	rep0 := replayed.Messages[0].Timestamp
	errs := make([]float64, n)
	for i := 0; i < n; i++ {
		o := original.Messages[i]
		r := replayed.Messages[i]
		if !bytes.Equal(o.Payload, r.Payload) && len(rep.Mismatches) < maxReportedMismatches {
			rep.Mismatches = append(rep.Mismatches, i)
		}
		want := float64(o.Timestamp-orig0) / speed
		errs[i] = float64(r.Timestamp-rep0) - want
	}

	if n > 1 {
		rep.MeanErrorMs, rep.StdDevErrorMs = stat.MeanStdDev(errs, nil)
	} else {
		rep.MeanErrorMs = errs[0]
	}
	abs := make([]float64, n)
	for i, e := range errs {
		abs[i] = math.Abs(e)
	}
	rep.MaxAbsErrorMs = floats.Max(abs)
	return rep
}

func (r Report) Print(w io.Writer) {
	fmt.Fprintf(w, "Original packets: %d\n", r.OriginalCount)
	fmt.Fprintf(w, "Replayed packets: %d\n", r.ReplayedCount)
	for _, i := range r.Mismatches {
		fmt.Fprintf(w, "Mismatch at packet %d\n", i)
	}
	fmt.Fprintf(w, "Timing error: mean=%.2fms stddev=%.2fms max=%.2fms\n",
		r.MeanErrorMs, r.StdDevErrorMs, r.MaxAbsErrorMs)
	if r.OK() {
		fmt.Fprintln(w, "SUCCESS: payloads match")
	} else {
		fmt.Fprintln(w, "FAILURE: captures differ")
	}
}
