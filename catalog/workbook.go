package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Kariqs/goutam-store/models"
	"github.com/tealeg/xlsx"
)

var workbookHeaders = []string{
	"ID", "Name (EN)", "Name (HI)", "Description (EN)", "Description (HI)",
	"Price", "Category", "Unit", "Image", "Available", "CreatedAt", "UpdatedAt",
}

// WriteWorkbook writes products as an xlsx sheet.
func WriteWorkbook(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, h := range workbookHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name.En)
		row.AddCell().SetValue(p.Name.Hi)
		row.AddCell().SetValue(p.Description.En)
		row.AddCell().SetValue(p.Description.Hi)
		row.AddCell().SetFloat(p.Price)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(string(p.Unit))
		row.AddCell().SetValue(p.Image)
		row.AddCell().SetBool(p.Available)
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return file.Write(w)
}

// ImportRow is one parsed line of an uploaded product sheet. ID is empty for
// rows that describe new products.
type ImportRow struct {
	Line  int
	ID    string
	Input models.ProductInput
}

// ReadWorkbook parses a sheet laid out like WriteWorkbook's output. Rows that
// cannot be read are reported by line number and skipped.
func ReadWorkbook(r io.ReaderAt, size int64) ([]ImportRow, []string, error) {
	file, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing workbook: %w", err)
	}
	if len(file.Sheets) == 0 || file.Sheets[0].MaxRow < 2 {
		return nil, nil, fmt.Errorf("workbook is empty or missing header row")
	}

	sheet := file.Sheets[0]
	var rows []ImportRow
	var skipped []string
	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]
		if row == nil || len(row.Cells) < 8 {
			skipped = append(skipped, fmt.Sprintf("line %d: too few columns", i+1))
			continue
		}
		get := func(index int) string {
			if index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		price, err := strconv.ParseFloat(get(5), 64)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("line %d: invalid price %q", i+1, get(5)))
			continue
		}
		in := models.ProductInput{
			Name:        models.ProductName{En: get(1), Hi: get(2)},
			Description: models.LocalizedText{En: get(3), Hi: get(4)},
			Price:       price,
			Category:    get(6),
			Unit:        get(7),
			Image:       get(8),
		}
		if v := get(9); v != "" {
			available := v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
			in.Available = &available
		}
		rows = append(rows, ImportRow{Line: i + 1, ID: get(0), Input: in})
	}
	return rows, skipped, nil
}
