package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/odekit/internal/experiment"
)

const refPrefix = "ref_"

// WriteCSV writes time, x0..xn and, when the report has a reference,
// ref_x0..ref_xn. Samples without a reference leave those cells empty.
func WriteCSV(out io.Writer, rep *experiment.Report) error {
	w := csv.NewWriter(out)

	dim := 0
	if len(rep.States) > 0 {
		dim = len(rep.States[0])
	}
	withRef := rep.HasReference()

	header := []string{"time"}
	for i := 0; i < dim; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if withRef {
		for i := 0; i < dim; i++ {
			header = append(header, fmt.Sprintf("%sx%d", refPrefix, i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, len(header))
	for k, t := range rep.Times {
		row = append(row[:0], formatFloat(t))
		for _, v := range rep.States[k] {
			row = append(row, formatFloat(v))
		}
		if withRef {
			var ref []float64
			if k < len(rep.Reference) {
				ref = rep.Reference[k]
			}
			for i := 0; i < dim; i++ {
				if ref == nil {
					row = append(row, "")
				} else {
					row = append(row, formatFloat(ref[i]))
				}
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ReadCSV parses what WriteCSV wrote.
func ReadCSV(in io.Reader) (times []float64, states, reference [][]float64, err error) {
	r := csv.NewReader(in)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil, fmt.Errorf("trajectory: missing header")
	}

	header := records[0]
	dim := 0
	withRef := false
	for _, h := range header[1:] {
		if strings.HasPrefix(h, refPrefix) {
			withRef = true
		} else {
			dim++
		}
	}

	times = make([]float64, 0, len(records)-1)
	states = make([][]float64, 0, len(records)-1)
	if withRef {
		reference = make([][]float64, 0, len(records)-1)
	}

	for n, record := range records[1:] {
		line := n + 2
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("trajectory line %d: %w", line, err)
		}
		times = append(times, t)

		state, err := parseRow(record[1 : 1+dim])
		if err != nil {
			return nil, nil, nil, fmt.Errorf("trajectory line %d: %w", line, err)
		}
		states = append(states, state)

		if withRef {
			cells := record[1+dim:]
			if cells[0] == "" {
				reference = append(reference, nil)
				continue
			}
			ref, err := parseRow(cells)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("trajectory line %d: %w", line, err)
			}
			reference = append(reference, ref)
		}
	}
	return times, states, reference, nil
}

func parseRow(cells []string) ([]float64, error) {
	out := make([]float64, len(cells))
	for i, c := range cells {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ExportJSON writes the full report as indented JSON.
func ExportJSON(w io.Writer, rep *experiment.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
