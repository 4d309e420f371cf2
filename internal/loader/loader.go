// Package loader reads reference data (ingredients and tags) from CSV files.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pageza/foodgram/backend/internal/models"
)

// ReadIngredients parses "name,measurement_unit" rows. The first row is skipped when skipHeader is set.
func ReadIngredients(r io.Reader, skipHeader bool) ([]models.Ingredient, error) {
	rows, err := readRows(r, 2, skipHeader)
	if err != nil {
		return nil, err
	}
	out := make([]models.Ingredient, 0, len(rows))
	for _, row := range rows {
		name, unit := strings.TrimSpace(row.fields[0]), strings.TrimSpace(row.fields[1])
		if name == "" || unit == "" {
			return nil, fmt.Errorf("line %d: name and measurement unit are required", row.line)
		}
		if utf8.RuneCountInString(name) > 200 || utf8.RuneCountInString(unit) > 10 {
			return nil, fmt.Errorf("line %d: value too long", row.line)
		}
		out = append(out, models.Ingredient{Name: name, MeasurementUnit: unit})
	}
	return out, nil
}

// ReadTags parses "name,color,slug" rows. The first row is skipped when skipHeader is set.
func ReadTags(r io.Reader, skipHeader bool) ([]models.Tag, error) {
	rows, err := readRows(r, 3, skipHeader)
	if err != nil {
		return nil, err
	}
	out := make([]models.Tag, 0, len(rows))
	for _, row := range rows {
		tag := models.Tag{
			Name:  strings.TrimSpace(row.fields[0]),
			Color: strings.ToUpper(strings.TrimSpace(row.fields[1])),
			Slug:  strings.TrimSpace(row.fields[2]),
		}
		if tag.Name == "" || tag.Slug == "" {
			return nil, fmt.Errorf("line %d: name and slug are required", row.line)
		}
		if tag.Color != "" && !models.IsTagColor(tag.Color) {
			return nil, fmt.Errorf("line %d: unknown color %q", row.line, tag.Color)
		}
		out = append(out, tag)
	}
	return out, nil
}

type csvRow struct {
	line   int
	fields []string
}

func readRows(r io.Reader, width int, skipHeader bool) ([]csvRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = width
	reader.TrimLeadingSpace = true

	var rows []csvRow
	for first := true; ; first = false {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if first && skipHeader {
			continue
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, csvRow{line: line, fields: record})
	}
}
