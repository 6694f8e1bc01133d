package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	sepStyle    = lipgloss.NewStyle().Faint(true)
)

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML writes v as YAML using its JSON field names.
func writeYAML(w io.Writer, v any) error {
	generic, err := toGeneric(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// toGeneric round-trips v through JSON into maps, slices, and scalars.
func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return out, nil
}

// table is a static grid of text cells.
type table struct {
	headers []string
	rows    [][]string
}

func (t *table) add(cells ...string) { t.rows = append(t.rows, cells) }

// render pads every column to its widest cell.
func (t *table) render(w io.Writer) error {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	// Width includes padding.
	total := len(widths) - 1
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}

	var sb strings.Builder
	writeRow := func(style lipgloss.Style, cells []string) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(style.Width(widths[i]).Render(cell))
			if i < len(widths)-1 {
				sb.WriteString(sepStyle.Render("|"))
			}
		}
		sb.WriteString("\n")
	}
	writeRow(headerStyle, t.headers)
	sb.WriteString(sepStyle.Render(strings.Repeat("-", total)) + "\n")
	for _, row := range t.rows {
		writeRow(cellStyle, row)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// recordTable builds a table of records with one column per JSON field.
func recordTable[T any](columns []string, records []T) (*table, error) {
	t := &table{headers: columns}
	for _, r := range records {
		doc, err := toGeneric(r)
		if err != nil {
			return nil, err
		}
		fields, _ := doc.(map[string]any)
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = cellText(fields[c])
		}
		t.add(cells...)
	}
	return t, nil
}

// cellText renders one decoded JSON value for a table cell.
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		return strconv.Itoa(len(x))
	default:
		return fmt.Sprint(x)
	}
}

// emit writes v in the selected format. The table form is built lazily.
func (a *app) emit(w io.Writer, v any, tbl func() (*table, error)) error {
	switch a.outputFormat() {
	case formatJSON:
		return writeJSON(w, v)
	case formatYAML:
		return writeYAML(w, v)
	default:
		t, err := tbl()
		if err != nil {
			return err
		}
		return t.render(w)
	}
}
