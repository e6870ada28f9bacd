package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"MarketClose/internal/domain/models"
	"MarketClose/pkg/util"
)

const (
	nameColWidth  = 18
	closeColWidth = 10
	closeNumFmt   = "#,##0.00"
)

// Sheet renders the report as a single-sheet workbook named after the
// ddmmyy date: Group | Name | Close, group cells merged per partition.
type Sheet struct{}

func NewSheet() *Sheet { return &Sheet{} }

func (Sheet) Render(r models.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := util.DateKey(r.Date)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := layoutColumns(f, sheet); err != nil {
		return nil, err
	}
	headStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Border:    thinBorder(),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Group", "Name", "Close"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", headStyle); err != nil {
		return nil, err
	}

	row := 2
	for _, class := range models.AssetClasses {
		rows := r.Partition(class)
		if len(rows) == 0 {
			continue
		}
		start := row
		for _, rr := range rows {
			if err := writeRow(f, sheet, row, rr); err != nil {
				return nil, err
			}
			row++
		}
		if err := writeGroup(f, sheet, start, row-1, rows[0].Group, headStyle); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func layoutColumns(f *excelize.File, sheet string) error {
	right, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{Horizontal: "right"}})
	if err != nil {
		return fmt.Errorf("name style: %w", err)
	}
	numFmt := closeNumFmt
	num, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt, Border: thinBorder()})
	if err != nil {
		return fmt.Errorf("close style: %w", err)
	}

	if err := f.SetColWidth(sheet, "A", "B", nameColWidth); err != nil {
		return err
	}
	if err := f.SetColStyle(sheet, "A:B", right); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "C", "C", closeColWidth); err != nil {
		return err
	}
	if err := f.SetColStyle(sheet, "C", num); err != nil {
		return err
	}
	return f.SetColVisible(sheet, "D:XFD", false)
}

func writeRow(f *excelize.File, sheet string, row int, rr models.ReportRow) error {
	if err := f.SetCellStr(sheet, cell("B", row), rr.Name); err != nil {
		return err
	}
	return f.SetCellFloat(sheet, cell("C", row), rr.Close.InexactFloat64(), -1, 64)
}

func writeGroup(f *excelize.File, sheet string, from, to int, label string, style int) error {
	top := cell("A", from)
	if err := f.SetCellStr(sheet, top, label); err != nil {
		return err
	}
	if to > from {
		if err := f.MergeCell(sheet, top, cell("A", to)); err != nil {
			return fmt.Errorf("merge %s: %w", label, err)
		}
	}
	return f.SetCellStyle(sheet, top, cell("A", to), style)
}

func thinBorder() []excelize.Border {
	sides := []string{"left", "top", "right", "bottom"}
	out := make([]excelize.Border, len(sides))
	for i, s := range sides {
		out[i] = excelize.Border{Type: s, Color: "000000", Style: 1}
	}
	return out
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
