package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"smartbudget/models"

	"github.com/xuri/excelize/v2"
)

const (
	ReportTimeLayout = "2006-01-02 15:04:05"
	ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	expenseSheetName = "Expenses"
	csvUTF8BOM       = "\xEF\xBB\xBF"
)

var reportHeaders = []string{"ID", "Date", "Category", "Description", "Amount", "Created At"}

// WriteExpenseCSV 以 CSV 写出消费记录，带 BOM 以便 Excel 正确识别 UTF-8
func WriteExpenseCSV(w io.Writer, expenses []models.Expense) error {
	if _, err := io.WriteString(w, csvUTF8BOM); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(reportHeaders); err != nil {
		return err
	}
	for _, e := range expenses {
		row := []string{
			fmt.Sprintf("%d", e.ID),
			e.ExpenseTime.Format(ReportTimeLayout),
			e.Category,
			e.Description,
			fmt.Sprintf("%.2f", e.Amount),
			e.CreatedAt.Format(ReportTimeLayout),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// BuildExpenseWorkbook 生成 Excel 报表，末行为合计
func BuildExpenseWorkbook(expenses []models.Expense) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", expenseSheetName); err != nil {
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}
	dataStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}
	summaryStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}

	widths := map[string]float64{"A": 10, "B": 20, "C": 16, "D": 30, "E": 14, "F": 20}
	for col, width := range widths {
		if err := f.SetColWidth(expenseSheetName, col, col, width); err != nil {
			return nil, err
		}
	}

	for i, header := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(expenseSheetName, cell, header)
	}
	f.SetCellStyle(expenseSheetName, "A1", "F1", headerStyle)

	var total float64
	for i, e := range expenses {
		row := i + 2
		f.SetCellValue(expenseSheetName, fmt.Sprintf("A%d", row), e.ID)
		f.SetCellValue(expenseSheetName, fmt.Sprintf("B%d", row), e.ExpenseTime.Format(ReportTimeLayout))
		f.SetCellValue(expenseSheetName, fmt.Sprintf("C%d", row), e.Category)
		f.SetCellValue(expenseSheetName, fmt.Sprintf("D%d", row), e.Description)
		f.SetCellValue(expenseSheetName, fmt.Sprintf("E%d", row), e.Amount)
		f.SetCellValue(expenseSheetName, fmt.Sprintf("F%d", row), e.CreatedAt.Format(ReportTimeLayout))
		f.SetCellStyle(expenseSheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), dataStyle)
		total += e.Amount
	}

	summaryRow := len(expenses) + 2
	f.SetCellValue(expenseSheetName, fmt.Sprintf("A%d", summaryRow), "Total")
	f.SetCellValue(expenseSheetName, fmt.Sprintf("D%d", summaryRow), fmt.Sprintf("%d records", len(expenses)))
	f.SetCellValue(expenseSheetName, fmt.Sprintf("E%d", summaryRow), models.RoundAmount(total))
	f.SetCellStyle(expenseSheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("F%d", summaryRow), summaryStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}
