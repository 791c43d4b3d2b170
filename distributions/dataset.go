package distributions

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Dataset provides the score distributions the simulator samples from.
type Dataset interface {
	ScoreDistributions() *ScoreDistributions
}

// StaticDataset serves an in-memory table.
type StaticDataset struct {
	dists *ScoreDistributions
}

func NewStaticDataset(d *ScoreDistributions) *StaticDataset {
	return &StaticDataset{dists: d}
}

func (s *StaticDataset) ScoreDistributions() *ScoreDistributions {
	return s.dists
}

// CSVDataset is a table loaded from a comma-separated file with one row per
// handicap, starting at handicap 0, and one column per score starting at 1.
type CSVDataset struct {
	StaticDataset
}

// LoadCSVDataset reads the table at path.
func LoadCSVDataset(path string) (*CSVDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("handicaps", d.Handicaps()).
		Int("max-score", len(d.scores)).Msg("loaded-score-distributions")
	return &CSVDataset{StaticDataset: StaticDataset{dists: d}}, nil
}

// ReadCSV parses a distribution table. Blank lines and lines starting with
// '#' are skipped.
func ReadCSV(r io.Reader) (*ScoreDistributions, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	var table [][]float64
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		row := make([]float64, len(record))
		for i, field := range record {
			row[i], err = strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", line, i+1, err)
			}
		}
		table = append(table, row)
	}
	return New(table)
}

// WriteCSV writes the table in the format ReadCSV understands.
func WriteCSV(w io.Writer, d *ScoreDistributions) error {
	cw := csv.NewWriter(w)
	for h := range d.Handicaps() {
		row, err := d.Distribution(h)
		if err != nil {
			return err
		}
		record := make([]string, len(row))
		for j, p := range row {
			record[j] = strconv.FormatFloat(p, 'f', 6, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
