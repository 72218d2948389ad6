// Package export produces the styled XLSX workbook with one sheet per
// section family plus a validation summary.
package export

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/structeng/cfst-extractor/constants"
	"github.com/structeng/cfst-extractor/internal/entity"
	"github.com/structeng/cfst-extractor/internal/validation"
)

// headers is the fixed column order. fcy150 is a reserved placeholder
// column that always exports empty.
var headers = []string{
	"Ref.No.",
	"fc (MPa)",
	"fc type",
	"Specimen Label",
	"fy (MPa)",
	"fcy150",
	"Recycled Aggregate Ratio (%)",
	"b (mm)",
	"h (mm)",
	"t (mm)",
	"r0 (mm)",
	"L (mm)",
	"e1 (mm)",
	"e2 (mm)",
	"Nexp (kN)",
	"Source Evidence",
	"N_theory (kN)",
	"xi (Validation Coefficient)",
	"Zone",
	"Needs Manual Check",
}

const summarySheet = "Summary"

// Service builds XLSX workbooks from validated specimens.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportXLSX returns an XLSX workbook (as bytes) with one sheet per section
// family, rows needing manual review filled light red, and a summary sheet
// with batch statistics. Specimens are routed to sheets by their Family.
func (s *Service) ExportXLSX(specimens []entity.Specimen) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	reviewStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFCCCC"}},
	})
	if err != nil {
		return nil, fmt.Errorf("review style: %w", err)
	}

	byFamily := make(map[constants.SectionFamily][]entity.Specimen)
	for _, sp := range specimens {
		byFamily[sp.Family] = append(byFamily[sp.Family], sp)
	}

	for _, family := range constants.Families {
		if err := s.writeFamilySheet(f, family, byFamily[family], headerStyle, reviewStyle); err != nil {
			return nil, err
		}
	}
	if err := s.writeSummarySheet(f, specimens, headerStyle); err != nil {
		return nil, err
	}

	// Drop excelize's default sheet and activate the first family sheet.
	_ = f.DeleteSheet("Sheet1")
	if index, err := f.GetSheetIndex(constants.FamilyRectangular.SheetName()); err == nil {
		f.SetActiveSheet(index)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"specimens", len(specimens),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeFamilySheet(f *excelize.File, family constants.SectionFamily, rows []entity.Specimen, headerStyle, reviewStyle int) error {
	sheet := family.SheetName()
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheet, err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", endCell, headerStyle)

	for i, sp := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			if v != nil {
				_ = f.SetCellValue(sheet, cell, v)
			}
		}

		write(1, sp.RefNo)
		write(2, floatCell(sp.FcValue))
		write(3, stringCell(sp.FcType))
		write(4, stringCell(sp.SpecimenLabel))
		write(5, floatCell(sp.Fy))
		write(6, "") // fcy150, reserved
		write(7, sp.RRatio)
		write(8, floatCell(sp.B))
		write(9, floatCell(sp.H))
		write(10, floatCell(sp.T))
		write(11, floatCell(sp.R0))
		write(12, floatCell(sp.L))
		write(13, sp.E1)
		write(14, sp.E2)
		write(15, floatCell(sp.NExp))
		write(16, stringCell(sp.SourceEvidence))
		write(17, floatCell(sp.NTheory))
		write(18, xiCell(sp.Xi))
		write(19, string(sp.Zone))
		write(20, sp.NeedsManualCheck)

		if sp.NeedsManualCheck {
			startCell, _ := excelize.CoordinatesToCellName(1, row)
			stopCell, _ := excelize.CoordinatesToCellName(len(headers), row)
			_ = f.SetCellStyle(sheet, startCell, stopCell, reviewStyle)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 24) // ref_no
	_ = f.SetColWidth(sheet, "B", "O", 12)
	_ = f.SetColWidth(sheet, "P", "P", 48) // source evidence
	_ = f.SetColWidth(sheet, "Q", "T", 14)
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	return nil
}

func (s *Service) writeSummarySheet(f *excelize.File, specimens []entity.Specimen, headerStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("new sheet %s: %w", summarySheet, err)
	}

	sum := validation.Summarize(specimens)

	lines := []struct {
		label string
		value any
	}{
		{"Total Specimens", sum.Total},
		{"Needs Manual Check", sum.NeedsManualCheck},
		{"Green Zone", sum.GreenZone},
		{"Yellow Zone", sum.YellowZone},
		{"Red Zone", sum.RedZone},
		{"Avg xi", sum.AvgXi},
		{"Min xi", sum.MinXi},
		{"Max xi", sum.MaxXi},
	}

	_ = f.SetCellValue(summarySheet, "A1", "Metric")
	_ = f.SetCellValue(summarySheet, "B1", "Value")
	_ = f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	for i, line := range lines {
		row := i + 2
		cellA, _ := excelize.CoordinatesToCellName(1, row)
		cellB, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(summarySheet, cellA, line.label)
		_ = f.SetCellValue(summarySheet, cellB, line.value)
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 24)
	_ = f.SetColWidth(summarySheet, "B", "B", 14)

	return nil
}

// floatCell unwraps an optional float; nil exports as a blank cell.
func floatCell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func stringCell(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

// xiCell guards against the +Inf coefficient produced when the
// theoretical capacity is zero; Excel has no infinity literal.
func xiCell(v *float64) any {
	if v == nil {
		return nil
	}
	if math.IsInf(*v, 0) || math.IsNaN(*v) {
		return "∞"
	}
	return *v
}
