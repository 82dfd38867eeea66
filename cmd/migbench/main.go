package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // Run completed
	ExitBelowTarget = 1 // Run completed but scores fell below --threshold
	ExitError       = 2 // Configuration or runtime error
)

// ThresholdError indicates that the run finished and every artifact was
// written, but one or more tasks scored below the requested threshold.
type ThresholdError struct {
	Failed    int
	Total     int
	Threshold float64
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("%d of %d task(s) scored below %.2f", e.Failed, e.Total, e.Threshold)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := execute(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		var thresholdErr *ThresholdError
		if errors.As(err, &thresholdErr) {
			os.Exit(ExitBelowTarget)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
