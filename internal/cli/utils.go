// Package cli provides output helpers for the kensa command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hyperjump/kensa/internal/models"
)

// OutputFormat is the format for grade output.
type OutputFormat string

const (
	// OutputText is a human-readable table (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one "<grade>\t<file>" line per record, for piping and the watch command.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is the same JSON array POST /rank returns.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value. Empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (supported: text, compact, json)", s)
	}
}

// WriteGrades writes grade records to w in the given format.
func WriteGrades(w io.Writer, records []models.GradeRecord, format OutputFormat) error {
	switch format {
	case OutputJSON:
		if records == nil {
			records = []models.GradeRecord{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case OutputCompact:
		for _, r := range records {
			if err := WriteGradeLine(w, r); err != nil {
				return err
			}
		}
		return nil
	default:
		return writeGradesText(w, records)
	}
}

// WriteGradeLine writes a single record in compact form.
func WriteGradeLine(w io.Writer, r models.GradeRecord) error {
	_, err := fmt.Fprintf(w, "%s\t%s\n", r.Grade, r.File)
	return err
}

func writeGradesText(w io.Writer, records []models.GradeRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No resumes graded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GRADE\tFILE\tID")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Grade, r.File, shortID(r.ID))
	}
	return tw.Flush()
}

// shortID keeps the digest prefix readable in tables.
func shortID(id string) string {
	const keep = len("sha256:") + 12
	if len(id) <= keep {
		return id
	}
	return id[:keep]
}
