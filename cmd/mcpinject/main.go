// Package main is the entry point for the mcpinject CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/shesha-tools/mcpinject/cmd/mcpinject/commands"
	mcperrors "github.com/shesha-tools/mcpinject/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "Error:", err)

	var exitErr *mcperrors.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Suggestion != "" {
			fmt.Fprintln(os.Stderr, "Suggestion:", exitErr.Suggestion)
		}
		os.Exit(exitErr.Code)
	}

	os.Exit(mcperrors.ExitCodeFor(err))
}
