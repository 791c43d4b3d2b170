package assignment

import (
	"container/heap"
	"iter"
	"slices"

	"github.com/domino14/fairway/tournament"
)

// Placement yields the team the next player goes to. open reports whether a
// team can still take players; closed teams are skipped and the sequence
// ends once no team is open. A team that is closed never opens again.
type Placement func(teams []*tournament.Team, goodness Goodness, open func(*tournament.Team) bool) iter.Seq[*tournament.Team]

// RoundRobin cycles through the teams in order: A B C A B C ...
func RoundRobin(teams []*tournament.Team, _ Goodness, open func(*tournament.Team) bool) iter.Seq[*tournament.Team] {
	return cycle(teams, open)
}

// Serpentine goes forward then backward through the teams, like a draft:
// A B C C B A A B C ...
func Serpentine(teams []*tournament.Team, _ Goodness, open func(*tournament.Team) bool) iter.Seq[*tournament.Team] {
	back := slices.Clone(teams)
	slices.Reverse(back)
	return cycle(slices.Concat(teams, back), open)
}

func cycle(order []*tournament.Team, open func(*tournament.Team) bool) iter.Seq[*tournament.Team] {
	return func(yield func(*tournament.Team) bool) {
		for {
			found := false
			for _, t := range order {
				if !open(t) {
					continue
				}
				found = true
				if !yield(t) {
					return
				}
			}
			if !found {
				return
			}
		}
	}
}

// WeakestFirst always hands the next player to the team whose members have
// the lowest total goodness. Ties go to the team listed first.
func WeakestFirst(teams []*tournament.Team, goodness Goodness, open func(*tournament.Team) bool) iter.Seq[*tournament.Team] {
	return func(yield func(*tournament.Team) bool) {
		q := make(teamQueue, len(teams))
		for i, t := range teams {
			q[i] = &queuedTeam{team: t, order: i, strength: strength(t, goodness)}
		}
		heap.Init(&q)
		for q.Len() > 0 {
			next := heap.Pop(&q).(*queuedTeam)
			if !open(next.team) {
				continue
			}
			if !yield(next.team) {
				return
			}
			next.strength = strength(next.team, goodness)
			heap.Push(&q, next)
		}
	}
}

func strength(t *tournament.Team, goodness Goodness) float64 {
	s := 0.0
	for _, p := range t.Members() {
		s += goodness(p)
	}
	return s
}

type queuedTeam struct {
	team     *tournament.Team
	order    int
	strength float64
}

// teamQueue is a min-heap on strength, then on original team order.
type teamQueue []*queuedTeam

func (q teamQueue) Len() int { return len(q) }

func (q teamQueue) Less(i, j int) bool {
	if q[i].strength == q[j].strength {
		return q[i].order < q[j].order
	}
	return q[i].strength < q[j].strength
}

func (q teamQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *teamQueue) Push(x any) { *q = append(*q, x.(*queuedTeam)) }

func (q *teamQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
