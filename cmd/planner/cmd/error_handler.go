package cmd

import (
	"fmt"
	"os"

	"github.com/herobront95-prog/limit-planner/pkg/errors"
)

// handleError prints application errors with their suggestion and exits
// with the category's exit code. Plain errors pass through to cobra.
func handleError(err error) error {
	if err == nil {
		return nil
	}

	plannerErr, ok := errors.AsPlannerError(err)
	if !ok {
		return err
	}

	fmt.Fprintf(os.Stderr, "Error: %s\n", plannerErr.Message)
	if plannerErr.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", plannerErr.Suggestion)
	}
	os.Exit(plannerErr.GetExitCode())
	return nil
}
