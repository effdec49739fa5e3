package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"cipherkit/internal/errors"
)

func main() {
	err := rootCmd.Execute()
	closeRuntime()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes the error and, for coded errors, its suggested fixes.
func printError(w *os.File, err error) {
	var ce *errors.CipherError
	if !stderrors.As(err, &ce) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Error: %s\n", ce.Error())
	for _, fix := range ce.SuggestedFixes {
		switch {
		case fix.Command != "":
			fmt.Fprintf(w, "  → %s: %s\n", fix.Description, fix.Command)
		case fix.URL != "":
			fmt.Fprintf(w, "  → %s: %s\n", fix.Description, fix.URL)
		}
	}
}
