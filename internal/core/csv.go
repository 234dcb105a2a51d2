package core

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ExportFilename is the default download name for the comparison table.
const ExportFilename = "cuadro_comparativo_riesgos.csv"

// ToCSV serializes the header and rows, in the given order, to CSV text.
func ToCSV(header []string, rows []RiskRow) string {
	var b strings.Builder
	// strings.Builder never fails to write.
	_ = WriteCSV(&b, header, rows)
	return b.String()
}

// WriteCSV writes the header line followed by one line per row.
//
// Every field is wrapped in double quotes and embedded quotes are doubled.
// encoding/csv only quotes fields that need it, so quoting is done here to
// keep output byte-identical regardless of content. Every line, including
// the last, ends in "\n".
func WriteCSV(w io.Writer, header []string, rows []RiskRow) error {
	bw := bufio.NewWriter(w)

	if err := writeRecord(bw, header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range rows {
		if err := writeRecord(bw, row.Cells); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quoteField(field)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

func quoteField(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
