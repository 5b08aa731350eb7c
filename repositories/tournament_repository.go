package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict for this organizer")
	ErrTournamentInUse        = errors.New("tournament is in use (participants/matches exist)")
	ErrTournamentInvalidData  = errors.New("tournament violates a table constraint")
)

type ListTournamentsFilter struct {
	OrganizerID *string
	State       *models.TournamentState
	Limit       int
	Offset      int
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error)
	// GetForUpdate reads the tournament and, inside a transaction, locks its row
	// until commit.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error)
	Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, name, organizer_id, rounds_max, scenarios, max_participants,
	state, current_round, created_at, updated_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := getExecutor(r.db, exec)
	query := `
		INSERT INTO tournaments (
			id, name, organizer_id, rounds_max, scenarios, max_participants, state, current_round
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		t.ID, t.Name, t.OrganizerID, t.RoundsMax, pq.Array(t.Scenarios), t.MaxParticipants, t.State, t.CurrentRound,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.getOne(ctx, getExecutor(r.db, exec), query, id)
}

func (r *postgresTournamentRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, getExecutor(r.db, exec), query, id)
}

func (r *postgresTournamentRepository) getOne(ctx context.Context, executor SQLExecutor, query, id string) (*models.Tournament, error) {
	t, err := scanTournament(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTournament(row rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	var scenarios pq.StringArray
	err := row.Scan(
		&t.ID, &t.Name, &t.OrganizerID, &t.RoundsMax, &scenarios, &t.MaxParticipants,
		&t.State, &t.CurrentRound, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Scenarios = []string(scenarios)
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.OrganizerID != nil {
		query += fmt.Sprintf(" AND organizer_id = $%d", argID)
		args = append(args, *filter.OrganizerID)
		argID++
	}
	if filter.State != nil {
		query += fmt.Sprintf(" AND state = $%d", argID)
		args = append(args, *filter.State)
		argID++
	}

	query += " ORDER BY created_at DESC, id ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := getExecutor(r.db, exec)
	query := `
		UPDATE tournaments SET
			name = $1,
			rounds_max = $2,
			scenarios = $3,
			max_participants = $4,
			state = $5,
			current_round = $6,
			updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`

	err := executor.QueryRowContext(ctx, query,
		t.Name, t.RoundsMax, pq.Array(t.Scenarios), t.MaxParticipants, t.State, t.CurrentRound, t.ID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTournamentNotFound
		}
		return r.handleTournamentError(err)
	}
	return nil
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	executor := getExecutor(r.db, exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := pqErrorCode(err); ok {
		switch code {
		case pqUniqueViolation:
			if constraint == "tournaments_organizer_id_name_key" {
				return ErrTournamentNameConflict
			}
		case pqForeignKeyViolation:
			// participants/matches ссылаются на турнир
			return ErrTournamentInUse
		case pqCheckViolation:
			return fmt.Errorf("%w: %s", ErrTournamentInvalidData, constraint)
		}
	}
	return err
}
