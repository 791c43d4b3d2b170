// Package roster reads the list of players taking part in an event.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Record is one line of a roster. Team is empty when the player has not
// been put on a team.
type Record struct {
	Name     string
	LastName string
	Handicap int
	Team     string
}

func (r Record) FullName() string {
	return strings.TrimSpace(r.Name + " " + r.LastName)
}

// Provider hands out roster records.
type Provider interface {
	Records() ([]Record, error)
}

// FileProvider reads a CSV roster from disk.
type FileProvider struct {
	Path      string
	WithTeams bool
}

func (f FileProvider) Records() ([]Record, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	recs, err := Read(fh, f.WithTeams)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	log.Debug().Str("path", f.Path).Int("players", len(recs)).Msg("loaded-roster")
	return recs, nil
}

var ErrNoPlayers = errors.New("roster has no players")

// Read parses rows of name,lastname,handicap and, when withTeams is set, a
// fourth team column. A first row whose handicap column reads "handicap" is
// taken as a header. Lines starting with '#' are skipped.
func Read(r io.Reader, withTeams bool) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	want := 3
	if withTeams {
		want = 4
	}
	var recs []Record
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		row = lo.Map(row, func(s string, _ int) string { return strings.TrimSpace(s) })
		if first {
			first = false
			if len(row) >= 3 && strings.EqualFold(row[2], "handicap") {
				continue
			}
		}
		if len(row) < want {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, want, len(row))
		}
		hcp, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad handicap %q: %w", line, row[2], err)
		}
		rec := Record{Name: row[0], LastName: row[1], Handicap: hcp}
		if withTeams {
			rec.Team = row[3]
		}
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		return nil, ErrNoPlayers
	}
	return recs, nil
}
