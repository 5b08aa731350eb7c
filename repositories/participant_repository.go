package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrParticipantNotFound          = errors.New("participant not found")
	ErrParticipantConflict          = errors.New("participant conflict: display name already registered for this tournament")
	ErrParticipantTournamentInvalid = errors.New("participant tournament conflict or invalid")
	ErrParticipantInUse             = errors.New("participant is referenced by generated matches")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Participant, error)
	// ListByTournament returns participants in enrollment order.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Participant, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error)
	Delete(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	executor := getExecutor(r.db, exec)
	query := `
		INSERT INTO participants (id, tournament_id, display_name, faction, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING enrolled_at`

	err := executor.QueryRowContext(ctx, query,
		p.ID, p.TournamentID, p.DisplayName, p.Faction, p.UserID,
	).Scan(&p.EnrolledAt)

	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok {
			switch code {
			case pqUniqueViolation: // unique_violation
				if constraint == "participants_tournament_id_display_name_key" {
					return ErrParticipantConflict
				}
			case pqForeignKeyViolation: // foreign_key_violation
				if constraint == "participants_tournament_id_fkey" {
					return ErrParticipantTournamentInvalid
				}
			}
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Participant, error) {
	executor := getExecutor(r.db, exec)
	query := `
		SELECT id, tournament_id, display_name, faction, user_id, enrolled_at
		FROM participants
		WHERE id = $1`

	p := &models.Participant{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.TournamentID, &p.DisplayName, &p.Faction, &p.UserID, &p.EnrolledAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant %s: %w", id, err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Participant, error) {
	executor := getExecutor(r.db, exec)
	query := `
		SELECT id, tournament_id, display_name, faction, user_id, enrolled_at
		FROM participants
		WHERE tournament_id = $1
		ORDER BY enrolled_at ASC, id ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p := &models.Participant{}
		if err := rows.Scan(&p.ID, &p.TournamentID, &p.DisplayName, &p.Faction, &p.UserID, &p.EnrolledAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error) {
	executor := getExecutor(r.db, exec)
	var count int
	err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants WHERE tournament_id = $1`, tournamentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants for tournament %s: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresParticipantRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	executor := getExecutor(r.db, exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		if code, _, ok := pqErrorCode(err); ok && code == pqForeignKeyViolation {
			return ErrParticipantInUse
		}
		return fmt.Errorf("failed to delete participant %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
