// Package report prints simulation results.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/fairway/config"
	"github.com/domino14/fairway/stats"
	"github.com/domino14/fairway/swaps"
	"github.com/domino14/fairway/tournament"
)

// Summary is what the use case found out besides the teams themselves.
type Summary struct {
	Strategy   string
	Fairness   float64
	FairEnough bool
	Swaps      *swaps.Report
	Settings   *config.Settings
}

func winPct(m tournament.Metrics) string {
	hw := stats.BinomialHalfWidth(m.WinProb, m.Iterations*len(m.WinProbByHole), stats.Z99)
	return fmt.Sprintf("%.2f±%.2f", 100*m.WinProb, 100*hw)
}

func scoreStr(m tournament.Metrics) string {
	return fmt.Sprintf("%.2f±%.2f", m.AvgScore, stats.Z99*m.ScoreStdErr)
}

func handicapList(hcps []int) string {
	return strings.Join(lo.Map(hcps, func(h int, _ int) string { return fmt.Sprint(h) }), ", ")
}

// WriteText prints a table of teams, or of players when there are none.
func WriteText(w io.Writer, t *tournament.Tournament, s Summary) error {
	var ss strings.Builder
	if t.HasTeams() {
		fmt.Fprintf(&ss, "%-14s%-16s%-16s%s\n", "Team", "Score", "Win%", "Handicaps")
		for _, tm := range t.Teams() {
			name := tm.Name
			if name == "" {
				name = fmt.Sprint(tm.ID())
			}
			m := tm.Metrics()
			fmt.Fprintf(&ss, "%-14s%-16s%-16s%s\n", name, scoreStr(m), winPct(m), handicapList(tm.Handicaps()))
		}
	} else {
		writePlayers(&ss, t.Players())
	}
	if s.Strategy != "" {
		fmt.Fprintf(&ss, "Strategy: %s\n", s.Strategy)
	}
	verdict := "not fair enough"
	if s.FairEnough {
		verdict = "fair enough"
	}
	fmt.Fprintf(&ss, "Fairness: %.4f (%s)\n", s.Fairness, verdict)
	if r := s.Swaps; r != nil {
		fmt.Fprintf(&ss, "Swaps: %d accepted in %d passes, %d simulations, %d cache hits, stopped: %s (%v)\n",
			r.Accepted, r.Passes, r.Evaluations, r.CacheHits, r.Stop, r.Elapsed)
	}
	if t.HasTeams() && len(t.Teams()) > 0 {
		fmt.Fprintf(&ss, "Iterations: %d (intervals are 99%% confidence)\n", t.Teams()[0].Metrics().Iterations)
	}
	_, err := io.WriteString(w, ss.String())
	return err
}

// WritePlayers prints every player's individual results.
func WritePlayers(w io.Writer, players []*tournament.Player) error {
	var ss strings.Builder
	writePlayers(&ss, players)
	_, err := io.WriteString(w, ss.String())
	return err
}

func writePlayers(ss *strings.Builder, players []*tournament.Player) {
	fmt.Fprintf(ss, "%-24s%-10s%-16s%s\n", "Player", "Handicap", "Score", "Win%")
	for _, p := range players {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("#%d", p.ID())
		}
		m := p.Metrics()
		fmt.Fprintf(ss, "%-24s%-10d%-16s%s\n", name, p.Handicap(), scoreStr(m), winPct(m))
	}
}

type playerDoc struct {
	ID       int     `yaml:"id"`
	Name     string  `yaml:"name,omitempty"`
	Handicap int     `yaml:"handicap"`
	Score    float64 `yaml:"expected-score"`
	WinProb  float64 `yaml:"win-probability"`
}

type teamDoc struct {
	ID      int         `yaml:"id"`
	Name    string      `yaml:"name,omitempty"`
	Score   float64     `yaml:"expected-score"`
	Stdev   float64     `yaml:"score-stdev"`
	WinProb float64     `yaml:"win-probability"`
	ByHole  []float64   `yaml:"win-probability-by-hole,flow"`
	Members []playerDoc `yaml:"members"`
}

type document struct {
	Strategy   string           `yaml:"strategy,omitempty"`
	Fairness   float64          `yaml:"fairness"`
	FairEnough bool             `yaml:"fair-enough"`
	Teams      []teamDoc        `yaml:"teams,omitempty"`
	Players    []playerDoc      `yaml:"players,omitempty"`
	Swaps      *swaps.Report    `yaml:"swaps,omitempty"`
	Settings   *config.Settings `yaml:"settings,omitempty"`
}

func toPlayerDoc(p *tournament.Player) playerDoc {
	return playerDoc{
		ID: p.ID(), Name: p.Name, Handicap: p.Handicap(),
		Score: p.Metrics().AvgScore, WinProb: p.Metrics().WinProb,
	}
}

// WriteYAML writes the results as a YAML document.
func WriteYAML(w io.Writer, t *tournament.Tournament, s Summary) error {
	doc := document{
		Strategy:   s.Strategy,
		Fairness:   s.Fairness,
		FairEnough: s.FairEnough,
		Swaps:      s.Swaps,
		Settings:   s.Settings,
	}
	if t.HasTeams() {
		for _, tm := range t.Teams() {
			m := tm.Metrics()
			doc.Teams = append(doc.Teams, teamDoc{
				ID: tm.ID(), Name: tm.Name, Score: m.AvgScore, Stdev: m.ScoreStdev,
				WinProb: m.WinProb, ByHole: m.WinProbByHole,
				Members: lo.Map(tm.Members(), func(p *tournament.Player, _ int) playerDoc { return toPlayerDoc(p) }),
			})
		}
	} else {
		doc.Players = lo.Map(t.Players(), func(p *tournament.Player, _ int) playerDoc { return toPlayerDoc(p) })
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// WriteHistograms plots the distribution of simulated game totals of every
// team (or player) that has them recorded.
func WriteHistograms(w io.Writer, t *tournament.Tournament, bins int) error {
	type series struct {
		label  string
		scores []float64
	}
	var all []series
	if t.HasTeams() {
		for _, tm := range t.Teams() {
			all = append(all, series{label: fmt.Sprintf("Team %d %s", tm.ID(), tm.Name), scores: tm.Metrics().GameScores})
		}
	} else {
		for _, p := range t.Players() {
			all = append(all, series{label: fmt.Sprintf("Player %d %s", p.ID(), p.Name), scores: p.Metrics().GameScores})
		}
	}
	for _, s := range all {
		if len(s.scores) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: game scores over %d games\n", strings.TrimSpace(s.label), len(s.scores)); err != nil {
			return err
		}
		if err := histogram.Fprint(w, histogram.Hist(bins, s.scores), histogram.Linear(40)); err != nil {
			return err
		}
	}
	return nil
}
