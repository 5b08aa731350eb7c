package brackets

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/scoring"
)

// defaultSearchBudget bounds the rematch-free backtracking search; past it the
// generator falls back to a greedy walk that may allow repeats.
const defaultSearchBudget = 20000

type SwissGenerator struct {
	searchBudget int
}

func NewSwissGenerator() RoundGenerator {
	return &SwissGenerator{searchBudget: defaultSearchBudget}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

// GenerateRound pairs round 1 in enrollment order (or a seeded shuffle) and later
// rounds by ranking, avoiding rematches where possible. An odd field gives a bye
// to the lowest-ranked participant with the fewest byes so far.
func (g *SwissGenerator) GenerateRound(ctx context.Context, params GenerateRoundParams) ([]*models.Match, error) {
	if params.RoundNumber < 1 {
		return nil, ErrInvalidRoundNumber
	}
	if len(params.Participants) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughParticipants, len(params.Participants))
	}
	for _, m := range params.History {
		if m.Round == params.RoundNumber {
			return nil, fmt.Errorf("%w: round %d", ErrRoundAlreadyPaired, params.RoundNumber)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	met := make(map[pairKey]bool)
	byes := make(map[string]int)
	for _, m := range params.History {
		if m.IsBye() {
			byes[m.Player1ID]++
			continue
		}
		if m.Player2ID != nil {
			met[newPairKey(m.Player1ID, *m.Player2ID)] = true
		}
	}

	var ordered []string
	if params.RoundNumber == 1 {
		ordered = enrollmentOrder(params.Participants, params.ShuffleSeed)
	} else {
		standings := params.Standings
		if standings == nil {
			standings = scoring.ComputeStandings(params.Participants, params.History)
		}
		ordered = rankedOrder(params.Participants, standings)
	}

	byeID := ""
	if len(ordered)%2 == 1 {
		var idx int
		idx, byeID = pickBye(ordered, byes)
		ordered = append(ordered[:idx:idx], ordered[idx+1:]...)
	}

	pairs, ok := g.searchRematchFree(ordered, met)
	if !ok {
		pairs = greedyPairs(ordered, met)
	}

	tournamentID := ""
	if params.Tournament != nil {
		tournamentID = params.Tournament.ID
	}

	matches := make([]*models.Match, 0, len(pairs)+1)
	for i, pair := range pairs {
		p2 := pair[1]
		matches = append(matches, &models.Match{
			ID:           uuid.NewString(),
			TournamentID: tournamentID,
			Round:        params.RoundNumber,
			TableNumber:  i + 1,
			Kind:         models.MatchKindNormal,
			Player1ID:    pair[0],
			Player2ID:    &p2,
		})
	}
	if byeID != "" {
		outcome := models.OutcomeBye
		result := scoring.ByeResult()
		matches = append(matches, &models.Match{
			ID:           uuid.NewString(),
			TournamentID: tournamentID,
			Round:        params.RoundNumber,
			TableNumber:  len(pairs) + 1,
			Kind:         models.MatchKindBye,
			Player1ID:    byeID,
			Result:       &result,
			Outcome:      &outcome,
		})
	}
	return matches, nil
}

type pairKey struct{ a, b string }

func newPairKey(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

func enrollmentOrder(participants []*models.Participant, seed int64) []string {
	sorted := make([]*models.Participant, len(participants))
	copy(sorted, participants)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].EnrolledAt.Equal(sorted[j].EnrolledAt) {
			return sorted[i].EnrolledAt.Before(sorted[j].EnrolledAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	ids := make([]string, len(sorted))
	for i, p := range sorted {
		ids[i] = p.ID
	}
	if seed != 0 {
		r := rand.New(rand.NewSource(seed))
		r.Shuffle(len(ids), func(i, j int) {
			ids[i], ids[j] = ids[j], ids[i]
		})
	}
	return ids
}

// rankedOrder sorts participants by their standings rank. Participants missing
// from the standings (late enrollments) go last, in enrollment order.
func rankedOrder(participants []*models.Participant, standings []models.StandingRow) []string {
	ranks := scoring.RankOf(standings)
	ids := enrollmentOrder(participants, 0)
	sort.SliceStable(ids, func(i, j int) bool {
		ri, rankedI := ranks[ids[i]]
		rj, rankedJ := ranks[ids[j]]
		if rankedI && rankedJ {
			return ri < rj
		}
		return rankedI && !rankedJ
	})
	return ids
}

// pickBye walks from the bottom of the ranking and returns the first
// participant holding the fewest byes.
func pickBye(ordered []string, byes map[string]int) (int, string) {
	minByes := -1
	for _, id := range ordered {
		if minByes < 0 || byes[id] < minByes {
			minByes = byes[id]
		}
	}
	for i := len(ordered) - 1; i >= 0; i-- {
		if byes[ordered[i]] == minByes {
			return i, ordered[i]
		}
	}
	return len(ordered) - 1, ordered[len(ordered)-1]
}

type pairingSearch struct {
	players []string
	used    []bool
	met     map[pairKey]bool
	pairs   [][2]string
	steps   int
	budget  int
	aborted bool
}

func (g *SwissGenerator) searchRematchFree(players []string, met map[pairKey]bool) ([][2]string, bool) {
	budget := g.searchBudget
	if budget <= 0 {
		budget = defaultSearchBudget
	}
	s := &pairingSearch{
		players: players,
		used:    make([]bool, len(players)),
		met:     met,
		pairs:   make([][2]string, 0, len(players)/2),
		budget:  budget,
	}
	if !s.solve() {
		return nil, false
	}
	return s.pairs, true
}

// solve pairs the highest unpaired player with the closest-ranked opponent it
// has not met, backtracking when the rest of the list cannot be completed.
func (s *pairingSearch) solve() bool {
	i := -1
	for k, u := range s.used {
		if !u {
			i = k
			break
		}
	}
	if i < 0 {
		return true
	}
	s.used[i] = true
	for j := i + 1; j < len(s.players); j++ {
		if s.used[j] || s.met[newPairKey(s.players[i], s.players[j])] {
			continue
		}
		s.steps++
		if s.steps > s.budget {
			s.aborted = true
			break
		}
		s.used[j] = true
		s.pairs = append(s.pairs, [2]string{s.players[i], s.players[j]})
		if s.solve() {
			return true
		}
		s.pairs = s.pairs[:len(s.pairs)-1]
		s.used[j] = false
		if s.aborted {
			break
		}
	}
	s.used[i] = false
	return false
}

// greedyPairs never fails: a player with no rematch-free opponent left is paired
// with the next available one.
func greedyPairs(players []string, met map[pairKey]bool) [][2]string {
	used := make([]bool, len(players))
	pairs := make([][2]string, 0, len(players)/2)
	for i := range players {
		if used[i] {
			continue
		}
		used[i] = true
		candidate := -1
		for j := i + 1; j < len(players); j++ {
			if used[j] {
				continue
			}
			if candidate < 0 {
				candidate = j
			}
			if !met[newPairKey(players[i], players[j])] {
				candidate = j
				break
			}
		}
		if candidate < 0 {
			break
		}
		used[candidate] = true
		pairs = append(pairs, [2]string{players[i], players[candidate]})
	}
	return pairs
}
