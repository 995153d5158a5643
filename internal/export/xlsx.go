// Package export renders reports as XLSX workbooks.
package export

import (
	"fmt"

	"balneario/internal/models"

	"github.com/xuri/excelize/v2"
)

const occupancySheet = "Occupancy"

// OccupancyWorkbook builds a date-by-service grid: one column per day, one
// row per reported service, plus average and peak columns at the end. The
// caller owns the returned file and must Close it.
func OccupancyWorkbook(est *models.Establishment, report *models.OccupancyReport) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(occupancySheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	dates := collectDates(report)
	dateCols := writeDateHeaders(f, dates)

	// Колонки сводки идут после последней даты.
	avgCol := 2 + len(dates)
	peakCol := avgCol + 1
	writeHeaderCell(f, avgCol, 2, "Avg %")
	writeHeaderCell(f, peakCol, 2, "Peak %")

	title := fmt.Sprintf("%s: occupancy %s - %s", est.Name, report.From, report.To)
	writeTitle(f, title, peakCol)

	serviceRows := writeServiceRows(f, report)
	writeDayCells(f, report, dateCols, serviceRows)

	for _, svc := range report.Services {
		row := serviceRows[svc.Service]
		setCell(f, avgCol, row, fmt.Sprintf("%.1f", svc.AveragePercent))
		setCell(f, peakCol, row, fmt.Sprintf("%.1f", svc.PeakPercent))
	}

	_ = f.SetColWidth(occupancySheet, "A", "A", 14)
	last, _ := excelize.ColumnNumberToName(peakCol)
	second, _ := excelize.ColumnNumberToName(2)
	_ = f.SetColWidth(occupancySheet, second, last, 12)

	_ = f.DeleteSheet("Sheet1")
	return f, nil
}

func setCell(f *excelize.File, col, row int, value string) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	_ = f.SetCellValue(occupancySheet, cell, value)
}

// collectDates returns the range days in report order without duplicates.
func collectDates(report *models.OccupancyReport) []string {
	var dates []string
	seen := make(map[string]bool)
	for _, day := range report.Days {
		if !seen[day.Date] {
			seen[day.Date] = true
			dates = append(dates, day.Date)
		}
	}
	return dates
}

func writeTitle(f *excelize.File, title string, lastCol int) {
	_ = f.SetCellValue(occupancySheet, "A1", title)
	last, _ := excelize.CoordinatesToCellName(lastCol, 1)
	_ = f.MergeCell(occupancySheet, "A1", last)

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(occupancySheet, "A1", "A1", style)
}

func writeDateHeaders(f *excelize.File, dates []string) map[string]int {
	cols := make(map[string]int, len(dates))
	col := 2
	for _, date := range dates {
		writeHeaderCell(f, col, 2, shortDate(date))
		cols[date] = col
		col++
	}
	return cols
}

func writeHeaderCell(f *excelize.File, col, row int, value string) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	_ = f.SetCellValue(occupancySheet, cell, value)

	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(occupancySheet, cell, cell, style)
}

func writeServiceRows(f *excelize.File, report *models.OccupancyReport) map[string]int {
	rows := make(map[string]int, len(report.Services))
	row := 3
	for _, svc := range report.Services {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(occupancySheet, cell, fmt.Sprintf("%s (%d)", svc.Service, svc.Capacity))

		style, _ := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
			Font: &excelize.Font{Bold: true},
		})
		_ = f.SetCellStyle(occupancySheet, cell, cell, style)

		rows[svc.Service] = row
		row++
	}
	return rows
}

func writeDayCells(f *excelize.File, report *models.OccupancyReport, dateCols, serviceRows map[string]int) {
	for _, day := range report.Days {
		col, okCol := dateCols[day.Date]
		row, okRow := serviceRows[day.Service]
		if !okCol || !okRow {
			continue
		}

		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(occupancySheet, cell,
			fmt.Sprintf("%d/%d (%.0f%%)", day.Occupied, day.Capacity, day.Percent))

		if styleID, err := f.NewStyle(dayCellStyle(day)); err == nil {
			_ = f.SetCellStyle(occupancySheet, cell, cell, styleID)
		}
	}
}

// dayCellStyle picks the fill by load: white when empty, green while there is
// room, red at or over capacity.
func dayCellStyle(day models.DayOccupancy) *excelize.Style {
	color := "#FFFFFF"
	switch {
	case day.Capacity > 0 && day.Occupied >= day.Capacity:
		color = "#FFC7CE"
	case day.Occupied > 0:
		color = "#C6EFCE"
	}

	return &excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "top",
		},
	}
}

// shortDate turns 2024-01-05 into 05.01 for column headers.
func shortDate(date string) string {
	if len(date) != len(models.DateLayout) {
		return date
	}
	return date[8:10] + "." + date[5:7]
}
