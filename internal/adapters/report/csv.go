package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/prairielabs/trackwatch/internal/domain/model"
)

// WriteCSV writes a header line plus one row per result, preserving the
// batch's presentation order.
func WriteCSV(w io.Writer, results []model.ClassifiedResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	for _, r := range results {
		if err := cw.Write(FromResult(r).Columns()); err != nil {
			return fmt.Errorf("csv export: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	return nil
}

// WriteCSVFile writes the batch to path, replacing any previous export.
func WriteCSVFile(path string, results []model.ClassifiedResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	if err := WriteCSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
