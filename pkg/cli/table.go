package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Table writes column-aligned output. The header row and its dash divider
// are written on the first Row, so a table with no rows prints nothing.
type Table struct {
	w       *tabwriter.Writer
	headers []string
	prefix  string
	rows    int
}

// NewTable creates a table on stdout with the given column headers.
func NewTable(headers ...string) *Table {
	return NewTableTo(os.Stdout, headers...)
}

// NewTableTo creates a table that writes to out.
func NewTableTo(out io.Writer, headers ...string) *Table {
	return &Table{
		w:       tabwriter.NewWriter(out, 0, 0, 2, ' ', 0),
		headers: headers,
	}
}

// WithPrefix indents every line of the table by prefix.
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// Row writes one row.
func (t *Table) Row(values ...string) {
	if t.rows == 0 {
		t.line(t.headers)
		div := make([]string, len(t.headers))
		for i, h := range t.headers {
			div[i] = strings.Repeat("-", len(h))
		}
		t.line(div)
	}
	t.rows++
	t.line(values)
}

// Len returns the number of rows written so far.
func (t *Table) Len() int { return t.rows }

// Flush writes buffered output.
func (t *Table) Flush() {
	if t.rows > 0 {
		t.w.Flush()
	}
}

func (t *Table) line(cells []string) {
	fmt.Fprintln(t.w, t.prefix+strings.Join(cells, "\t"))
}
