package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrMatchNotFound         = errors.New("match not found")
	ErrMatchSlotConflict     = errors.New("match already exists for this round and table")
	ErrMatchParticipantGone  = errors.New("match references an unknown participant")
	ErrMatchTournamentAbsent = errors.New("match references an unknown tournament")
)

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error)
	// ListByTournament returns matches ordered by round, then table.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Match, error)
	ListByRound(ctx context.Context, exec SQLExecutor, tournamentID string, round int) ([]*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	DeleteByRound(ctx context.Context, exec SQLExecutor, tournamentID string, round int) (int64, error)
	CountByParticipant(ctx context.Context, exec SQLExecutor, participantID string) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, round, table_number, kind, player1_id, player2_id,
	first_player_id, report, result, outcome, confirmed, created_at, updated_at`

func scanMatch(row rowScanner) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.Round, &m.TableNumber, &m.Kind, &m.Player1ID, &m.Player2ID,
		&m.FirstPlayerID, &m.Report, &m.Result, &m.Outcome, &m.Confirmed, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	executor := getExecutor(r.db, exec)
	query := `
		INSERT INTO matches (
			id, tournament_id, round, table_number, kind, player1_id, player2_id,
			first_player_id, report, result, outcome, confirmed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	for _, m := range matches {
		err := executor.QueryRowContext(ctx, query,
			m.ID, m.TournamentID, m.Round, m.TableNumber, m.Kind, m.Player1ID, m.Player2ID,
			m.FirstPlayerID, m.Report, m.Result, m.Outcome, m.Confirmed,
		).Scan(&m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create match round %d table %d: %w", m.Round, m.TableNumber, r.handleMatchError(err))
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error) {
	executor := getExecutor(r.db, exec)
	m, err := scanMatch(executor.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY round ASC, table_number ASC`
	return r.list(ctx, getExecutor(r.db, exec), query, tournamentID)
}

func (r *postgresMatchRepository) ListByRound(ctx context.Context, exec SQLExecutor, tournamentID string, round int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 AND round = $2 ORDER BY table_number ASC`
	return r.list(ctx, getExecutor(r.db, exec), query, tournamentID, round)
}

func (r *postgresMatchRepository) list(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

// Update persists the mutable part of a match: first player, scores and confirmation.
func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := getExecutor(r.db, exec)
	query := `
		UPDATE matches SET
			first_player_id = $1,
			report = $2,
			result = $3,
			outcome = $4,
			confirmed = $5,
			updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`

	err := executor.QueryRowContext(ctx, query,
		m.FirstPlayerID, m.Report, m.Result, m.Outcome, m.Confirmed, m.ID,
	).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to update match %s: %w", m.ID, r.handleMatchError(err))
	}
	return nil
}

func (r *postgresMatchRepository) DeleteByRound(ctx context.Context, exec SQLExecutor, tournamentID string, round int) (int64, error) {
	executor := getExecutor(r.db, exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1 AND round = $2`, tournamentID, round)
	if err != nil {
		return 0, fmt.Errorf("failed to delete round %d of tournament %s: %w", round, tournamentID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n, nil
}

func (r *postgresMatchRepository) CountByParticipant(ctx context.Context, exec SQLExecutor, participantID string) (int, error) {
	executor := getExecutor(r.db, exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE player1_id = $1 OR player2_id = $1`, participantID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for participant %s: %w", participantID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if code, constraint, ok := pqErrorCode(err); ok {
		switch code {
		case pqUniqueViolation:
			return ErrMatchSlotConflict
		case pqForeignKeyViolation:
			if constraint == "matches_tournament_id_fkey" {
				return ErrMatchTournamentAbsent
			}
			return ErrMatchParticipantGone
		}
	}
	return err
}
