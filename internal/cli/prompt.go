package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptResult contains the result of a confirmation prompt.
type PromptResult struct {
	// Accepted is true if the user confirmed (typed "y" or "yes").
	Accepted bool
	// Cancelled is true if reading input failed (e.g. Ctrl+C).
	Cancelled bool
}

// confirmClearAll asks the user to confirm deleting every cache entry.
// The prompt defaults to "No" when the user presses Enter without input or
// closes the stream. Valid acceptance: "y", "yes" in any case.
func confirmClearAll(w io.Writer, r io.Reader, count int, dir string) PromptResult {
	fmt.Fprintf(w, "This will delete ALL %d cache entries under %s. Continue? [y/N] ", count, dir)

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if scanner.Err() != nil {
			return PromptResult{Cancelled: true}
		}
		// EOF without error: treat as decline.
		return PromptResult{}
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return PromptResult{Accepted: true}
	default:
		return PromptResult{}
	}
}
