// Package report writes the dataset and the model evaluation to an Excel
// workbook.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/solar-forecast-service/internal/dataset"
	"github.com/couchcryptid/solar-forecast-service/internal/domain"
	"github.com/couchcryptid/solar-forecast-service/internal/training"
)

// Sheet names.
const (
	SheetDataset    = "Dataset"
	SheetModels     = "Models"
	SheetImportance = "Importance"
)

var modelHeader = []string{"Interval", "Target", "Regressor", "Train rows", "Test rows", "MAE", "MSE", "R2"}

// Workbook builds a workbook with the dataset rows, one evaluation row per
// model plus the summed total per interval, and the feature importances.
// set may be nil, in which case only the dataset sheet is filled.
func Workbook(measurements []domain.Measurement, set *training.ModelSet) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetDataset); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeDataset(f, measurements); err != nil {
		f.Close()
		return nil, err
	}
	if set == nil {
		return f, nil
	}
	if err := writeModels(f, set); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeImportance(f, set); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeDataset(f *excelize.File, measurements []domain.Measurement) error {
	if err := writeHeader(f, SheetDataset, dataset.Header(), 16); err != nil {
		return err
	}
	for i, m := range measurements {
		row := make([]any, 0, 1+domain.NumFeatures+domain.NumLocations)
		if m.Time.IsZero() {
			row = append(row, "")
		} else {
			row = append(row, domain.FormatTime(m.Time))
		}
		for _, v := range m.Features.Row() {
			row = append(row, v)
		}
		for _, v := range m.Production {
			row = append(row, v)
		}
		if err := setRow(f, SheetDataset, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeModels(f *excelize.File, set *training.ModelSet) error {
	if _, err := f.NewSheet(SheetModels); err != nil {
		return fmt.Errorf("create sheet %s: %w", SheetModels, err)
	}
	if err := writeHeader(f, SheetModels, modelHeader, 14); err != nil {
		return err
	}

	row := 2
	for _, im := range set.Intervals() {
		for _, m := range im.Locations {
			if err := setRow(f, SheetModels, row, modelRow(m)); err != nil {
				return err
			}
			row++
		}
		summed := []any{
			string(im.Interval), "Summed total", string(set.Kind), "", im.SummedTotal.N,
			im.SummedTotal.MAE, im.SummedTotal.MSE, im.SummedTotal.R2,
		}
		if err := setRow(f, SheetModels, row, summed); err != nil {
			return err
		}
		row++
		if im.Total != nil {
			if err := setRow(f, SheetModels, row, modelRow(im.Total)); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func modelRow(m *training.Model) []any {
	return []any{
		string(m.Interval), m.Label, string(m.Kind), m.TrainRows, m.Metrics.N,
		m.Metrics.MAE, m.Metrics.MSE, m.Metrics.R2,
	}
}

func writeImportance(f *excelize.File, set *training.ModelSet) error {
	if _, err := f.NewSheet(SheetImportance); err != nil {
		return fmt.Errorf("create sheet %s: %w", SheetImportance, err)
	}
	header := append([]string{"Interval", "Target"}, domain.FeatureNames...)
	if err := writeHeader(f, SheetImportance, header, 16); err != nil {
		return err
	}

	row := 2
	for _, m := range set.Models() {
		values := []any{string(m.Interval), m.Label}
		for _, v := range m.Importance {
			values = append(values, v)
		}
		if err := setRow(f, SheetImportance, row, values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []string, width float64) error {
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("%s header: %w", sheet, err)
		}
		col, _, err := excelize.SplitCellName(cell)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("%s column width: %w", sheet, err)
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}
