package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sqlstash/sqlstash/internal/cache"
	"github.com/sqlstash/sqlstash/internal/table"
)

const tabPadding = 2

// queryPreviewLen bounds the query column width in listings.
const queryPreviewLen = 48

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	noteStyle  = lipgloss.NewStyle().Faint(true)
)

// renderEntries writes the listing table: fingerprint, query preview, rows,
// size, and age per entry.
func renderEntries(w io.Writer, entries []*cache.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	fmt.Fprintln(tw, "FINGERPRINT\tQUERY\tROWS\tSIZE\tAGE")
	for _, e := range entries {
		if e.Corrupt {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				e.Fingerprint, "(corrupt entry)", "-",
				humanize.Bytes(uint64(e.SizeBytes)), cache.FormatDuration(e.Age()))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			e.Fingerprint, e.QueryPreview(queryPreviewLen), e.Rows,
			humanize.Bytes(uint64(e.SizeBytes)), cache.FormatDuration(e.Age()))
	}
	return tw.Flush()
}

// renderSchema writes one entry's column names and types.
func renderSchema(w io.Writer, e *cache.Entry) error {
	fmt.Fprintln(w, titleStyle.Render(e.Fingerprint))
	if e.Query != "" {
		fmt.Fprintln(w, noteStyle.Render(e.QueryPreview(2*queryPreviewLen)))
	}
	if e.Corrupt {
		fmt.Fprintln(w, "  (corrupt entry, schema unavailable)")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	for i, c := range e.Columns {
		fmt.Fprintf(tw, "  %d.\t%s\t%s\n", i+1, c.Name, c.Type)
	}
	return tw.Flush()
}

// renderMetadata writes the full metadata block of one entry.
func renderMetadata(w io.Writer, e *cache.Entry) {
	fmt.Fprintln(w, titleStyle.Render("Entry "+e.Fingerprint))
	fmt.Fprintf(w, "Query:      %s\n", e.Query)
	fmt.Fprintf(w, "Created:    %s (%s ago)\n",
		e.CreatedAt.Local().Format(time.RFC3339), cache.FormatDuration(e.Age()))
	fmt.Fprintf(w, "Rows:       %d\n", e.Rows)
	fmt.Fprintf(w, "Columns:    %d\n", len(e.Columns))
	fmt.Fprintf(w, "Size:       %s\n", humanize.Bytes(uint64(e.SizeBytes)))
}

// renderTable writes tabular results with a header row. maxRows bounds the
// output; zero or negative means all rows.
func renderTable(w io.Writer, tbl *table.Table, maxRows int) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	for i, c := range tbl.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c.Name)
	}
	fmt.Fprintln(tw)

	n := tbl.NumRows()
	if maxRows > 0 && maxRows < n {
		n = maxRows
	}
	for _, row := range tbl.Rows[:n] {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, formatCell(v))
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if n < tbl.NumRows() {
		fmt.Fprintln(w, noteStyle.Render(
			fmt.Sprintf("… %d of %d rows shown", n, tbl.NumRows())))
	}
	return nil
}

func formatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return "NULL"
	case string:
		return c
	case int64:
		return strconv.FormatInt(c, 10)
	case float64:
		return strconv.FormatFloat(c, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	case time.Time:
		return c.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(c)
	}
}
