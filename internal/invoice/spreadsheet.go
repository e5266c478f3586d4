package invoice

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetRenderer writes the invoice into an .xlsx workbook for
// back-office use. It reads the same content model as the other
// renderers, so every figure string matches the print and vector
// documents verbatim.
type SpreadsheetRenderer struct{}

func NewSpreadsheetRenderer() *SpreadsheetRenderer {
	return &SpreadsheetRenderer{}
}

func (r *SpreadsheetRenderer) Render(cm *ContentModel) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Invoice"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Invoice %s - %s", cm.InvoiceNumber, cm.Company.Name))
	_ = f.MergeCell(sheetName, "A1", "E1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.SetCellValue(sheetName, "A3", "Bill To")
	_ = f.SetCellValue(sheetName, "B3", cm.BillTo.Name)
	_ = f.SetCellValue(sheetName, "A4", "Issued")
	_ = f.SetCellValue(sheetName, "B4", cm.IssueDate)
	_ = f.SetCellValue(sheetName, "A5", "Due")
	_ = f.SetCellValue(sheetName, "B5", cm.DueDate)
	_ = f.SetCellValue(sheetName, "A6", "Status")
	_ = f.SetCellValue(sheetName, "B6", cm.Status)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	headers := []string{"Description", "Travelers", "Duration", "Unit Price", "Amount"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 8)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	row := 9
	for _, item := range cm.Lines {
		values := []string{item.Description, item.Travelers, item.Duration, item.UnitPrice, item.Amount}
		for i, value := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheetName, cell, value)
		}
		row++
	}

	row++
	_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), "Subtotal")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), cm.Totals.Subtotal)
	row++
	_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), cm.Totals.DiscountLabel)
	_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), cm.Totals.DiscountAmount)
	row++
	_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), "Total")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), cm.Totals.Total)

	totalStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheetName, fmt.Sprintf("D%d", row), fmt.Sprintf("E%d", row), totalStyle)

	_ = f.SetColWidth(sheetName, "A", "A", 40)
	_ = f.SetColWidth(sheetName, "B", "E", 16)
	_ = f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
