// Package render formats CLI results as JSON, plain text or terminal tables.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
)

type Format string

const (
	FormatJSON   Format = "json"
	FormatText   Format = "text"
	FormatPretty Format = "pretty"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatText, FormatPretty:
		return f, nil
	}
	return "", fmt.Errorf("invalid format: %q (valid: json, text, pretty)", s)
}

// DefaultFormat is pretty on an interactive stdout and text otherwise.
func DefaultFormat() Format {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return FormatPretty
	}
	return FormatText
}

// Renderer renders a list of items. JSON output marshals Data as is; the
// other formats need their callbacks.
type Renderer[T any] struct {
	Data []T
	// Text renders one item per line.
	Text func(T) string
	// Header and Row describe the pretty table.
	Header []string
	Row    func(T) []string
}

func (r Renderer[T]) Render(format Format) (string, error) {
	switch format {
	case FormatJSON:
		return JSON(r.Data)
	case FormatText:
		if r.Text == nil {
			return "", fmt.Errorf("text format not defined for this output")
		}
		lines := make([]string, len(r.Data))
		for i, item := range r.Data {
			lines[i] = r.Text(item)
		}
		return strings.Join(lines, "\n"), nil
	case FormatPretty:
		if r.Row == nil {
			return "", fmt.Errorf("pretty format not defined for this output")
		}
		rows := make([][]string, len(r.Data))
		for i, item := range r.Data {
			rows[i] = r.Row(item)
		}
		return Table(r.Header, rows), nil
	}
	return "", fmt.Errorf("unsupported format: %s", format)
}

// JSON marshals v with two-space indentation.
func JSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var (
	cellStyle   = lipgloss.NewStyle().PaddingRight(1)
	headerStyle = cellStyle.Bold(true)
)

// Table lays rows out in a bordered table at most 120 columns wide.
func Table(header []string, rows [][]string) string {
	t := table.New().
		Width(120).
		Wrap(true).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}
