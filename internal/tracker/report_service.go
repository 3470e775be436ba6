package tracker

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/KrikINS/floor-ready/internal/core/task"
)

const profitSheet = "Profitability"

var profitHeaders = []string{
	"Task ID", "Custom ID", "Title", "Status", "Event", "Cost Center",
	"Unit Type", "Billable Qty", "Cost to Client", "Actual Cost",
	"Profit / Unit", "Net Profit",
}

// ReportService renders spreadsheet exports from the task projection.
type ReportService struct {
	tasks *TaskService
	log   zerolog.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(tasks *TaskService, log zerolog.Logger) *ReportService {
	return &ReportService{
		tasks: tasks,
		log:   log.With().Str("component", "report-service").Logger(),
	}
}

// Profitability writes an xlsx workbook with one row per task matching
// filter and a totals row. Admin or Manager only.
func (s *ReportService) Profitability(ctx context.Context, filter task.ListFilter, w io.Writer) error {
	actor, err := currentActor(ctx, s.tasks.Identity)
	if err != nil {
		return err
	}
	if err := requirePrivileged(actor, "export financial reports"); err != nil {
		return err
	}

	views, err := s.tasks.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("profitability report: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(profitSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, h := range profitHeaders {
		if err := f.SetCellValue(profitSheet, cellName(i, 1), h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err == nil {
		_ = f.SetRowStyle(profitSheet, 1, 1, headerStyle)
	}

	for r, v := range views {
		row := r + 2
		values := []any{
			v.ID,
			v.CustomID,
			v.Title,
			string(v.Status.Canonical()),
			eventName(v),
			costCenterCode(v),
			v.UnitType,
			amount(v.BillableQuantity),
			amount(v.CostToClient),
			amount(v.ActualCost),
			v.Profit.PerUnit,
			v.Profit.Net,
		}
		for c, val := range values {
			if err := f.SetCellValue(profitSheet, cellName(c, row), val); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	totalRow := len(views) + 2
	if err := f.SetCellValue(profitSheet, cellName(0, totalRow), "Total"); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}
	if len(views) > 0 {
		for _, c := range []int{8, 9, 11} {
			col := colName(c)
			formula := fmt.Sprintf("SUM(%s2:%s%d)", col, col, totalRow-1)
			if err := f.SetCellFormula(profitSheet, cellName(c, totalRow), formula); err != nil {
				return fmt.Errorf("write totals: %w", err)
			}
		}
	}
	if totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(profitSheet, totalRow, totalRow, totalStyle)
	}

	_ = f.SetColWidth(profitSheet, "A", "B", 38)
	_ = f.SetColWidth(profitSheet, "C", "C", 32)
	_ = f.SetColWidth(profitSheet, "D", "L", 15)

	if f.GetSheetName(0) != profitSheet {
		_ = f.DeleteSheet("Sheet1")
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	s.log.Info().Int("rows", len(views)).Str("actor_id", actor.ID).Msg("profitability report exported")
	return nil
}

func colName(col int) string {
	return string(rune('A' + col))
}

// cellName converts a zero-based column and one-based row into A1 notation.
func cellName(col, row int) string {
	return fmt.Sprintf("%s%d", colName(col), row)
}

func amount(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

func eventName(v task.View) string {
	if v.Event == nil {
		return ""
	}
	return v.Event.Name
}

func costCenterCode(v task.View) string {
	if v.CostCenter == nil {
		return ""
	}
	return v.CostCenter.Code
}
