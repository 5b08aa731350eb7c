package scoring

import (
	"sort"

	"github.com/Dosada05/tournament-engine/models"
)

// ComputeStandings aggregates confirmed matches into one row per participant,
// ordered by tournament points, victory points, massacre points and finally
// participant id. Unconfirmed and unplayed matches contribute nothing.
func ComputeStandings(participants []*models.Participant, matches []*models.Match) []models.StandingRow {
	index := make(map[string]*models.StandingRow, len(participants))
	rows := make([]*models.StandingRow, 0, len(participants))
	for _, p := range participants {
		if p == nil {
			continue
		}
		if _, dup := index[p.ID]; dup {
			continue
		}
		row := &models.StandingRow{ParticipantID: p.ID, Participant: p}
		index[p.ID] = row
		rows = append(rows, row)
	}

	for _, m := range matches {
		if m == nil || !m.Confirmed || m.Outcome == nil {
			continue
		}
		if m.IsBye() {
			if row := index[m.Player1ID]; row != nil {
				row.TournamentPoints += ByeTournamentPoints
				row.MatchesPlayed++
				row.Byes++
			}
			continue
		}
		if m.Result == nil || m.Player2ID == nil {
			continue
		}
		var massacre models.PointPair
		if m.Report != nil {
			massacre = m.Report.MassacrePoints
		}
		if row := index[m.Player1ID]; row != nil {
			applySide(row, m.Result.TournamentPoints.P1, m.Result.VictoryPoints.P1, massacre.P1, sideOutcome(*m.Outcome, true))
		}
		if row := index[*m.Player2ID]; row != nil {
			applySide(row, m.Result.TournamentPoints.P2, m.Result.VictoryPoints.P2, massacre.P2, sideOutcome(*m.Outcome, false))
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TournamentPoints != b.TournamentPoints {
			return a.TournamentPoints > b.TournamentPoints
		}
		if a.VictoryPoints != b.VictoryPoints {
			return a.VictoryPoints > b.VictoryPoints
		}
		if a.MassacrePoints != b.MassacrePoints {
			return a.MassacrePoints > b.MassacrePoints
		}
		return a.ParticipantID < b.ParticipantID
	})

	standings := make([]models.StandingRow, len(rows))
	for i, row := range rows {
		row.Rank = i + 1
		standings[i] = *row
	}
	return standings
}

type result int

const (
	resultLoss result = iota
	resultDraw
	resultWin
)

func sideOutcome(o models.Outcome, player1 bool) result {
	switch o {
	case models.OutcomeDraw:
		return resultDraw
	case models.OutcomeP1Wins:
		if player1 {
			return resultWin
		}
	case models.OutcomeP2Wins:
		if !player1 {
			return resultWin
		}
	}
	return resultLoss
}

func applySide(row *models.StandingRow, tp, vp, massacre int, r result) {
	row.TournamentPoints += tp
	row.VictoryPoints += vp
	row.MassacrePoints += massacre
	row.MatchesPlayed++
	switch r {
	case resultWin:
		row.Wins++
	case resultDraw:
		row.Draws++
	default:
		row.Losses++
	}
}

// RankOf maps participant id to its 1-based position in standings. A repeated
// id keeps its first position.
func RankOf(standings []models.StandingRow) map[string]int {
	ranks := make(map[string]int, len(standings))
	for i, row := range standings {
		if _, seen := ranks[row.ParticipantID]; !seen {
			ranks[row.ParticipantID] = i + 1
		}
	}
	return ranks
}
