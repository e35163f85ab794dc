package predict

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// LoadScenarioCSV reads a scenario table. Header columns matching one of the
// model's grouping factors are read as level values; every other column is
// parsed as a float64 covariate. Column/design alignment is checked later,
// when the scenario is bound to the model.
func LoadScenarioCSV(path string, model *ModelSummary) (Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario CSV: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read scenario CSV header: %w", err)
	}
	isGroup := make([]bool, len(header))
	for i, name := range header {
		isGroup[i] = model.group(name) != nil
	}

	var scenario Scenario
	for row := 2; ; row++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scenario CSV row %d: %w", row, err)
		}
		obs := Observation{
			Covariates: make(map[string]float64),
			Groups:     make(map[string]string),
		}
		for i, field := range rec {
			if isGroup[i] {
				obs.Groups[header[i]] = field
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("scenario CSV row %d, column %q: %w", row, header[i], err)
			}
			obs.Covariates[header[i]] = v
		}
		scenario = append(scenario, obs)
	}
	return scenario, nil
}

// WriteResultCSV writes fit,lwr,upr rows in scenario order. Missing (NaN)
// results are written as NA so downstream tables keep their row count.
func WriteResultCSV(path string, result PredictionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result CSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"fit", "lwr", "upr"}); err != nil {
		return fmt.Errorf("write result CSV header: %w", err)
	}
	for _, row := range result {
		if err := w.Write([]string{formatCell(row.Fit), formatCell(row.Lwr), formatCell(row.Upr)}); err != nil {
			return fmt.Errorf("write result CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush result CSV: %w", err)
	}
	return nil
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
