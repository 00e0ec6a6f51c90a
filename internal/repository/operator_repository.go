package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/complaint-voice-backend/internal/models"
)

// OperatorRepository отвечает за учётные записи операторов диспетчерской.
type OperatorRepository struct {
	db *sqlx.DB
}

// NewOperatorRepository создаёт новый экземпляр.
func NewOperatorRepository(db *sqlx.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

// Create сохраняет нового оператора.
func (r *OperatorRepository) Create(ctx context.Context, op *models.Operator) error {
	query := `
		INSERT INTO operators (id, username, password_hash, display_name, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		op.ID, op.Username, op.PasswordHash, op.DisplayName, op.IsActive, op.CreatedAt,
	); err != nil {
		return fmt.Errorf("operator repository: create %w", err)
	}
	return nil
}

// GetByUsername возвращает оператора по логину.
func (r *OperatorRepository) GetByUsername(ctx context.Context, username string) (*models.Operator, error) {
	var op models.Operator
	query := `
		SELECT id, username, password_hash, display_name, is_active, last_login_at, created_at
		FROM operators
		WHERE username = $1
	`
	if err := r.db.GetContext(ctx, &op, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOperatorNotFound
		}
		return nil, fmt.Errorf("operator repository: get by username %w", err)
	}
	return &op, nil
}

// UpdateLastLoginAt обновляет время последнего входа.
func (r *OperatorRepository) UpdateLastLoginAt(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE operators SET last_login_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("operator repository: update last login %w", err)
	}
	return nil
}
