package main

import (
	"fmt"
	"io"
	"time"

	"tmplc/internal/buildpipeline"
)

func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	if timings.Has(buildpipeline.StageRead) {
		fmt.Fprintf(out, "read %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageRead)))
	}
	if timings.Has(buildpipeline.StageCompile) {
		fmt.Fprintf(out, "compiled %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageCompile)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
