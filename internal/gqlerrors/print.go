package gqlerrors

import (
	"strconv"
	"strings"
	"unicode/utf8"

	language "github.com/hanpama/gqlcore/internal/language"
)

const (
	minifiedLineLength = 120
	minifiedChunkSize  = 80
)

func printError(e *Error) string {
	out := []string{e.Error()}
	if len(e.nodes) > 0 {
		for _, n := range e.nodes {
			if sp, ok := language.SpanOf(n); ok {
				out = append(out, PrintSourceLocation(sp.Source, sp.Source.Location(sp.Start)))
			}
		}
	} else if e.source != nil {
		for _, l := range e.locations {
			out = append(out, PrintSourceLocation(e.source, language.SourceLocation{Line: l.Line, Column: l.Column}))
		}
	}
	return strings.Join(out, "\n\n")
}

type prefixedLine struct {
	prefix string
	line   string
}

// PrintSourceLocation renders a "name:line:column" header followed by the
// reported line, its neighbours, and a caret under the column.
func PrintSourceLocation(src *language.Source, loc language.SourceLocation) string {
	header := src.Name() + ":" + strconv.Itoa(loc.Line) + ":" + strconv.Itoa(loc.Column) + "\n"
	lines := src.Lines()
	idx := loc.Line - 1
	if idx < 0 || idx >= len(lines) {
		return strings.TrimSuffix(header, "\n")
	}
	current := lines[idx]
	lineNum := strconv.Itoa(loc.Line)

	if utf8.RuneCountInString(current) > minifiedLineLength {
		chunkIdx, chunkCol := loc.Column/minifiedChunkSize, loc.Column%minifiedChunkSize
		chunks := chunkRunes(current, minifiedChunkSize)
		rows := []prefixedLine{{prefix: lineNum + " |", line: chunks[0]}}
		for _, c := range chunks[1:min(chunkIdx+1, len(chunks))] {
			rows = append(rows, prefixedLine{prefix: "|", line: c})
		}
		rows = append(rows, prefixedLine{prefix: "|", line: caret(chunkCol)})
		if chunkIdx < len(chunks)-1 {
			rows = append(rows, prefixedLine{prefix: "|", line: chunks[chunkIdx+1]})
		}
		return header + printPrefixedLines(rows)
	}

	rows := make([]prefixedLine, 0, 4)
	if idx > 0 {
		rows = append(rows, prefixedLine{prefix: strconv.Itoa(loc.Line-1) + " |", line: lines[idx-1]})
	}
	rows = append(rows,
		prefixedLine{prefix: lineNum + " |", line: current},
		prefixedLine{prefix: "|", line: caret(loc.Column)},
	)
	if idx < len(lines)-1 {
		rows = append(rows, prefixedLine{prefix: strconv.Itoa(loc.Line+1) + " |", line: lines[idx+1]})
	}
	return header + printPrefixedLines(rows)
}

func caret(column int) string {
	if column < 1 {
		column = 1
	}
	return strings.Repeat(" ", column-1) + "^"
}

func printPrefixedLines(rows []prefixedLine) string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r.prefix))
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		s := strings.Repeat(" ", width-len(r.prefix)) + r.prefix
		if r.line != "" {
			s += " " + r.line
		}
		out = append(out, s)
	}
	return strings.Join(out, "\n")
}

func chunkRunes(s string, size int) []string {
	runes := []rune(s)
	var chunks []string
	for i := 0; i < len(runes); i += size {
		chunks = append(chunks, string(runes[i:min(i+size, len(runes))]))
	}
	return chunks
}
