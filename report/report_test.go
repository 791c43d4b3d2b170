package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/domino14/fairway/swaps"
	"github.com/domino14/fairway/tournament"
)

func teamTournament(t *testing.T) *tournament.Tournament {
	t.Helper()
	is := is.New(t)
	ids := tournament.NewIDAllocator()
	tids := tournament.NewIDAllocator()
	var ps []*tournament.Player
	for _, h := range []int{2, 20, 8, 14} {
		p, err := tournament.NewPlayer(ids, h)
		is.NoErr(err)
		ps = append(ps, p)
	}
	ps[0].Name = "Ana Ortiz"
	teams, err := tournament.EmptyTeams(tids, 2)
	is.NoErr(err)
	is.NoErr(teams[0].AddPlayers([]*tournament.Player{ps[0], ps[1]}))
	is.NoErr(teams[1].AddPlayers([]*tournament.Player{ps[2], ps[3]}))
	teams[0].Name = "Team 1"
	teams[1].Name = "Team 2"
	g, err := tournament.NewGame(2, 1)
	is.NoErr(err)
	tm, err := tournament.New(g, ps, 1, teams)
	is.NoErr(err)
	teams[0].SetMetrics(tournament.Metrics{
		AvgScore: 7.5, WinProb: 0.625, WinProbByHole: []float64{0.5, 0.75},
		Iterations: 100, GameScores: []float64{7, 8, 7, 8, 6},
	})
	teams[1].SetMetrics(tournament.Metrics{
		AvgScore: 8.25, WinProb: 0.375, WinProbByHole: []float64{0.5, 0.25},
		Iterations: 100,
	})
	return tm
}

func TestWriteText(t *testing.T) {
	is := is.New(t)
	tm := teamTournament(t)
	var buf bytes.Buffer
	err := WriteText(&buf, tm, Summary{
		Strategy: "ABCD", Fairness: 0.25,
		Swaps: &swaps.Report{Accepted: 1, Passes: 2, Stop: swaps.StopNoImprovingSwap},
	})
	is.NoErr(err)
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	is.True(strings.HasPrefix(lines[0], "Team"))
	assert.Contains(t, lines[1], "Team 1")
	assert.Contains(t, lines[1], "62.50±")
	assert.Contains(t, lines[1], "2, 20")
	assert.Contains(t, lines[2], "8, 14")
	assert.Contains(t, out, "Strategy: ABCD")
	assert.Contains(t, out, "not fair enough")
	assert.Contains(t, out, "1 accepted in 2 passes")
	assert.Contains(t, out, "Iterations: 100")
}

func TestWritePlayers(t *testing.T) {
	is := is.New(t)
	tm := teamTournament(t)
	var buf bytes.Buffer
	is.NoErr(WritePlayers(&buf, tm.Players()))
	out := buf.String()
	assert.Contains(t, out, "Ana Ortiz")
	assert.Contains(t, out, "#1")
	is.Equal(len(strings.Split(strings.TrimSpace(out), "\n")), 5)
}

func TestWriteYAML(t *testing.T) {
	is := is.New(t)
	tm := teamTournament(t)
	var buf bytes.Buffer
	is.NoErr(WriteYAML(&buf, tm, Summary{
		Strategy: "Serpentine", Fairness: 0.25, FairEnough: true,
		Swaps: &swaps.Report{Stop: swaps.StopFairEnough, Elapsed: 1500 * time.Millisecond},
	}))

	var doc map[string]any
	is.NoErr(yaml.Unmarshal(buf.Bytes(), &doc))
	is.Equal(doc["strategy"], "Serpentine")
	is.Equal(doc["fair-enough"], true)
	teams := doc["teams"].([]any)
	is.Equal(len(teams), 2)
	first := teams[0].(map[string]any)
	is.Equal(first["name"], "Team 1")
	is.Equal(len(first["members"].([]any)), 2)
	sw := doc["swaps"].(map[string]any)
	is.Equal(sw["elapsed"], "1.5s")
	is.Equal(sw["stop"], swaps.StopFairEnough.String())
}

func TestWriteHistogramsSkipsEmpty(t *testing.T) {
	is := is.New(t)
	tm := teamTournament(t)
	var buf bytes.Buffer
	is.NoErr(WriteHistograms(&buf, tm, 3))
	out := buf.String()
	assert.Contains(t, out, "Team 0 Team 1: game scores over 5 games")
	assert.NotContains(t, out, "Team 2")
}
