// Command validate checks the integrity of the solar dataset and prints the
// held-out evaluation of every model the dashboard would train on it. It
// verifies the header, that every row parses, that values fall inside the
// input boundaries, and that timestamps are ordered and unique.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -dataset dataset/Data_Cacak.csv \
//	  -regressor ridge \
//	  -xlsx report.xlsx
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/solar-forecast-service/internal/dataset"
	"github.com/couchcryptid/solar-forecast-service/internal/domain"
	"github.com/couchcryptid/solar-forecast-service/internal/regression"
	"github.com/couchcryptid/solar-forecast-service/internal/report"
	"github.com/couchcryptid/solar-forecast-service/internal/training"
)

// maxListed caps the per-phase error listing.
const maxListed = 25

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	datasetPath string
	regressor   regression.Kind
	params      regression.Params
	strategy    domain.Strategy
	totalMode   domain.TotalMode
	xlsxPath    string
}

func main() {
	datasetPath := flag.String("dataset", "dataset/Data_Cacak.csv", "path to the dataset CSV")
	regressor := flag.String("regressor", string(regression.KindForest), "regressor to evaluate: forest, linear or ridge")
	alpha := flag.Float64("alpha", 1.0, "ridge penalty")
	trees := flag.Int("trees", regression.DefaultTrees, "forest size")
	seed := flag.Uint64("seed", 42, "split and forest seed")
	strategy := flag.String("strategy", string(domain.StrategyAggregated), "scaled trains hourly models only; aggregated adds daily and monthly")
	totalMode := flag.String("total-mode", string(domain.TotalModel), "sum or model; model also evaluates a dedicated total regressor")
	xlsxPath := flag.String("xlsx", "", "optional path for an Excel report")
	flag.Parse()

	opts := options{
		datasetPath: *datasetPath,
		params:      regression.Params{Alpha: *alpha, Trees: *trees, Seed: *seed},
		xlsxPath:    *xlsxPath,
	}
	var err error
	if opts.regressor, err = regression.ParseKind(*regressor); err == nil {
		if opts.strategy, err = domain.ParseStrategy(*strategy); err == nil {
			opts.totalMode, err = domain.ParseTotalMode(*totalMode)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(opts))
}

func run(opts options) int {
	fmt.Println("=== Solar Dataset Validation ===")
	fmt.Println()

	raw, err := loadRaw(opts.datasetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	measurements, stats, err := dataset.Load(opts.datasetPath)
	if err != nil && !errors.Is(err, dataset.ErrMissingColumn) {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateColumns(raw.header),
		validateRows(raw),
		validateRanges(measurements),
		validateTimestamps(measurements),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d read, %d kept, %d dropped, %d undated\n", stats.Total, stats.Kept, stats.Dropped, stats.Undated)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxListed {
				fmt.Printf("  ... %d more\n", len(p.errors)-maxListed)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	set, err := evaluate(opts, measurements)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nFATAL: training: %v\n", err)
		return 1
	}

	if opts.xlsxPath != "" {
		if err := writeReport(opts.xlsxPath, measurements, set); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		fmt.Printf("\nWrote report: %s\n", opts.xlsxPath)
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// rawData is the CSV as read, before any cleaning.
type rawData struct {
	header []string
	rows   [][]string
}

func loadRaw(path string) (rawData, error) {
	f, err := os.Open(path)
	if err != nil {
		return rawData{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return rawData{}, fmt.Errorf("%s is empty", path)
		}
		return rawData{}, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	rows, err := r.ReadAll()
	if err != nil {
		return rawData{}, err
	}
	return rawData{header: header, rows: rows}, nil
}

// ── Phase 1: Columns ──

func validateColumns(header []string) *phase {
	p := &phase{name: "Phase 1: Columns (header)"}
	present := make(map[string]bool, len(header))
	for _, h := range header {
		if present[h] {
			p.errorf("duplicate column %q", h)
		}
		present[h] = true
	}
	for _, col := range dataset.Header() {
		if !present[col] {
			p.errorf("missing column %q", col)
		}
	}
	return p
}

// ── Phase 2: Rows ──
// Every row must carry numeric features and targets and a parsable timestamp.

func validateRows(raw rawData) *phase {
	p := &phase{name: "Phase 2: Rows (parse)"}
	idx := make(map[string]int, len(raw.header))
	for i, h := range raw.header {
		idx[h] = i
	}

	for i, row := range raw.rows {
		line := i + 2
		for _, col := range dataset.Header() {
			j, ok := idx[col]
			if !ok {
				continue
			}
			var v string
			if j < len(row) {
				v = strings.TrimSpace(row[j])
			}
			if col == domain.ColumnDatetime {
				if _, err := domain.ParseTime(v); err != nil {
					p.errorf("line %d: %s %q does not parse", line, col, v)
				}
				continue
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				p.errorf("line %d: %s %q is not a number", line, col, v)
			}
		}
	}
	return p
}

// ── Phase 3: Ranges ──

func validateRanges(measurements []domain.Measurement) *phase {
	p := &phase{name: "Phase 3: Ranges (input boundaries)"}
	for i, m := range measurements {
		if err := domain.ValidateMeasurement(m); err != nil {
			p.errorf("row %d (%s): %v", i+1, describeTime(m.Time), err)
		}
	}
	return p
}

// ── Phase 4: Timestamps ──

func validateTimestamps(measurements []domain.Measurement) *phase {
	p := &phase{name: "Phase 4: Timestamps (order, duplicates)"}
	seen := make(map[time.Time]int)
	var prev time.Time
	for i, m := range measurements {
		if m.Time.IsZero() {
			continue
		}
		if first, ok := seen[m.Time]; ok {
			p.errorf("row %d: timestamp %s repeats row %d", i+1, describeTime(m.Time), first)
		} else {
			seen[m.Time] = i + 1
		}
		if !prev.IsZero() && m.Time.Before(prev) {
			p.errorf("row %d: timestamp %s is earlier than the previous row", i+1, describeTime(m.Time))
		}
		prev = m.Time
	}
	return p
}

// ── Model evaluation ──

func evaluate(opts options, measurements []domain.Measurement) (*training.ModelSet, error) {
	factory, err := regression.NewFactory(opts.regressor, opts.params)
	if err != nil {
		return nil, err
	}
	trainOpts := training.DefaultOptions()
	trainOpts.Strategy = opts.strategy
	trainOpts.TotalMode = opts.totalMode
	trainOpts.Seed = opts.params.Seed

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	set, err := training.NewTrainer(factory, trainOpts, logger).Train(measurements)
	if err != nil {
		return nil, err
	}

	fmt.Printf("\n=== Model Evaluation (%s, held-out %.0f%%) ===\n", set.Kind, trainOpts.TestRatio*100)
	for _, im := range set.Intervals() {
		fmt.Printf("\n--- %s models (%d rows) ---\n", im.Interval, im.Rows)
		for _, m := range im.Locations {
			printMetrics(fmt.Sprintf("%s model - %s", im.Interval, m.Label), m.Metrics)
		}
		printMetrics(fmt.Sprintf("%s total production (summed)", im.Interval), im.SummedTotal)
		if im.Total != nil {
			printMetrics(fmt.Sprintf("%s total production (model)", im.Interval), im.Total.Metrics)
		}
	}
	for _, i := range domain.Intervals {
		if _, err := set.Interval(i); err != nil && opts.strategy == domain.StrategyAggregated {
			fmt.Printf("\n%s models skipped: fewer than %d rows\n", i, trainOpts.MinRows)
		}
	}
	return set, nil
}

func printMetrics(label string, m regression.Metrics) {
	fmt.Printf("  %-40s MAE=%.2f, MSE=%.2f, R²=%.2f\n", label+":", m.MAE, m.MSE, m.R2)
}

func writeReport(path string, measurements []domain.Measurement, set *training.ModelSet) error {
	f, err := report.Workbook(measurements, set)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func describeTime(t time.Time) string {
	if t.IsZero() {
		return "undated"
	}
	return domain.FormatTime(t)
}
