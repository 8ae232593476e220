package parser

import (
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"strings"

	"codexrag/internal/document"
)

// CSVParser handles CSV files. The first row is treated as a header and
// each data row becomes a list item of "header: value" pairs.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (document.Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return document.Document{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return document.Document{Title: titleFromFilename(filename)}, nil
	}

	header := rows[0]
	var buf strings.Builder
	buf.WriteString("<ul>\n")
	for _, row := range rows[1:] {
		var parts []string
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if i < len(header) && strings.TrimSpace(header[i]) != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", strings.TrimSpace(header[i]), cell))
			} else {
				parts = append(parts, cell)
			}
		}
		if len(parts) > 0 {
			buf.WriteString("<li>")
			buf.WriteString(html.EscapeString(strings.Join(parts, "; ")))
			buf.WriteString("</li>\n")
		}
	}
	buf.WriteString("</ul>\n")

	return document.Document{
		Title:       titleFromFilename(filename),
		ContentHTML: buf.String(),
	}, nil
}
