// Package xlsxexport writes a declaration run as an Excel workbook with one
// sheet for the declaration boxes and one for the commodity codes.
package xlsxexport

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"customsdesk/internal/csvexport"
	"customsdesk/internal/declaration"
	"customsdesk/internal/domain"
)

const (
	DeclarationSheet    = "Declaration"
	ClassificationSheet = "Classification"
)

var declarationColumns = []string{"Section", "Item", "Box", "Text"}

// Export writes the workbook to w.
func Export(w io.Writer, decl *declaration.Declaration, results []domain.ClassificationResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), DeclarationSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ClassificationSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeDeclaration(f, decl, headerStyle); err != nil {
		return fmt.Errorf("write declaration sheet: %w", err)
	}
	if err := writeClassification(f, results, headerStyle); err != nil {
		return fmt.Errorf("write classification sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeDeclaration(f *excelize.File, decl *declaration.Declaration, headerStyle int) error {
	if err := writeRow(f, DeclarationSheet, 1, toCells(declarationColumns)); err != nil {
		return err
	}
	if err := f.SetCellStyle(DeclarationSheet, "A1", "D1", headerStyle); err != nil {
		return err
	}

	row := 2
	if decl != nil {
		for _, b := range decl.Header {
			if err := writeRow(f, DeclarationSheet, row, []interface{}{"Header", "", b.Number, b.Text}); err != nil {
				return err
			}
			row++
		}
		for _, item := range decl.Items {
			for _, b := range item.Boxes {
				if err := writeRow(f, DeclarationSheet, row, []interface{}{"Item", item.Index, b.Number, b.Text}); err != nil {
					return err
				}
				row++
			}
		}
	}

	return f.SetColWidth(DeclarationSheet, "D", "D", 120)
}

func writeClassification(f *excelize.File, results []domain.ClassificationResult, headerStyle int) error {
	if err := writeRow(f, ClassificationSheet, 1, toCells(csvexport.Columns)); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(csvexport.Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(ClassificationSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i := range results {
		cells := toCells(csvexport.ResultToRow(&results[i]))
		// Line numbers are stored as numbers.
		if n, err := strconv.Atoi(cells[0].(string)); err == nil {
			cells[0] = n
		}
		if err := writeRow(f, ClassificationSheet, i+2, cells); err != nil {
			return err
		}
	}
	return f.SetColWidth(ClassificationSheet, "B", "B", 40)
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
