package exporter

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

const (
	headerFill        = "2E7D32"
	headerFontColor   = "FFFFFF"
	headerBorderColor = "DDDDDD"
	dataBorderColor   = "EEEEEE"
)

// StyledWriter renders sheets with excelize cell styles: a green bold header,
// frozen header pane, column widths, number formats, a banded table and
// dash placeholders. Styling is best-effort; a failing step is logged and
// skipped while the values are always written.
type StyledWriter struct {
	logger *slog.Logger
}

// NewStyledWriter creates a StyledWriter.
func NewStyledWriter(logger *slog.Logger) *StyledWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &StyledWriter{logger: logger}
}

// WriteSheet implements WorksheetWriter.
func (w *StyledWriter) WriteSheet(sheet Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeValues(f, sheet); err != nil {
		return nil, err
	}

	steps := []struct {
		name  string
		apply func(*excelize.File, Sheet) error
	}{
		{"header", styleHeader},
		{"freeze_panes", freezeHeader},
		{"column_widths", setColumnWidths},
		{"table", addTable},
		{"data_cells", styleDataCells},
	}
	for _, step := range steps {
		if err := step.apply(f, sheet); err != nil {
			w.logger.Warn("styling step skipped",
				slog.String("step", step.name),
				slog.String("error", err.Error()))
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeValues writes the header labels and data cells. Blank cells get the
// dash glyph.
func writeValues(f *excelize.File, sheet Sheet) error {
	for c, col := range sheet.Columns {
		if err := f.SetCellStr(sheet.Name, cellName(c+1, 1), col.Label); err != nil {
			return fmt.Errorf("write header %q: %w", col.Key, err)
		}
	}
	for r, row := range sheet.Rows {
		for c, v := range row {
			cell := cellName(c+1, r+2)
			var err error
			switch {
			case IsBlank(v):
				err = f.SetCellStr(sheet.Name, cell, EmptyCellGlyph)
			case v.Kind() == domain.KindInt:
				err = f.SetCellInt(sheet.Name, cell, v.IntValue())
			case v.Kind() == domain.KindFloat:
				err = f.SetCellFloat(sheet.Name, cell, v.Number(), -1, 64)
			default:
				err = f.SetCellStr(sheet.Name, cell, v.Str())
			}
			if err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}
	return nil
}

func border(color string) []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	out := make([]excelize.Border, len(sides))
	for i, side := range sides {
		out[i] = excelize.Border{Type: side, Color: color, Style: 1}
	}
	return out
}

func styleHeader(f *excelize.File, sheet Sheet) error {
	id, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: headerFontColor},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border(headerBorderColor),
	})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet.Name, "A1", cellName(len(sheet.Columns), 1), id)
}

func freezeHeader(f *excelize.File, sheet Sheet) error {
	return f.SetPanes(sheet.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setColumnWidths(f *excelize.File, sheet Sheet) error {
	for c, col := range sheet.Columns {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.Name, name, name, col.Width); err != nil {
			return err
		}
	}
	return nil
}

func addTable(f *excelize.File, sheet Sheet) error {
	stripes := true
	return f.AddTable(sheet.Name, &excelize.Table{
		Range:          "A1:" + sheet.LastCell(),
		Name:           TableName,
		StyleName:      TableStyle,
		ShowRowStripes: &stripes,
	})
}

// styleDataCells gives every data cell a light border; numeric cells also get
// their column's number format and blank cells are centered.
func styleDataCells(f *excelize.File, sheet Sheet) error {
	plain, err := f.NewStyle(&excelize.Style{Border: border(dataBorderColor)})
	if err != nil {
		return err
	}
	blank, err := f.NewStyle(&excelize.Style{
		Border:    border(dataBorderColor),
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	formats := make(map[string]int)
	formatStyle := func(numFmt string) (int, error) {
		if id, ok := formats[numFmt]; ok {
			return id, nil
		}
		code := numFmt
		id, err := f.NewStyle(&excelize.Style{Border: border(dataBorderColor), CustomNumFmt: &code})
		if err != nil {
			return 0, err
		}
		formats[numFmt] = id
		return id, nil
	}

	for r, row := range sheet.Rows {
		for c, v := range row {
			col := sheet.Columns[c]
			style := plain
			switch {
			case IsBlank(v):
				style = blank
			case col.Numeric && v.IsNumeric():
				if style, err = formatStyle(col.NumFmt); err != nil {
					return err
				}
			}
			cell := cellName(c+1, r+2)
			if err := f.SetCellStyle(sheet.Name, cell, cell, style); err != nil {
				return err
			}
		}
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
