package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/complaint-voice-backend/internal/models"
)

// Ошибки уровня репозитория.
var (
	ErrComplaintNotFound = errors.New("complaint not found")
	ErrOperatorNotFound  = errors.New("operator not found")
)

// ComplaintRepository отвечает за работу с жалобами.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository создаёт новый экземпляр.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

const complaintColumns = `
	complaint_no, id, service_no, name, area_description, landmark,
	problem_details, status, estimation_time, created_at,
	resolved_at, resolution_duration
`

// Create вставляет новую жалобу и заполняет complaint_no из сиквенса.
// Идентификатор, статус и created_at выставляет сервисный слой; номер
// выдаёт только база, чтобы он был строго возрастающим при любых
// конкурентных вставках.
func (r *ComplaintRepository) Create(ctx context.Context, c *models.Complaint) error {
	query := `
		INSERT INTO complaints
			(id, service_no, name, area_description, landmark, problem_details, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING complaint_no
	`
	if err := r.db.QueryRowxContext(ctx, query,
		c.ID,
		c.ServiceNo,
		c.Name,
		c.AreaDescription,
		c.Landmark,
		c.ProblemDetails,
		c.Status,
		c.CreatedAt,
	).Scan(&c.ComplaintNo); err != nil {
		return fmt.Errorf("complaint repository: create %w", err)
	}
	return nil
}

// GetByNo возвращает жалобу по порядковому номеру.
func (r *ComplaintRepository) GetByNo(ctx context.Context, no int64) (*models.Complaint, error) {
	var complaint models.Complaint
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE complaint_no = $1`
	if err := r.db.GetContext(ctx, &complaint, query, no); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrComplaintNotFound
		}
		return nil, fmt.Errorf("complaint repository: get by no %w", err)
	}
	return &complaint, nil
}

// GetByID возвращает жалобу по полному идентификатору.
func (r *ComplaintRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`
	if err := r.db.GetContext(ctx, &complaint, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrComplaintNotFound
		}
		return nil, fmt.Errorf("complaint repository: get by id %w", err)
	}
	return &complaint, nil
}

// GetByIDPrefix ищет жалобу по началу идентификатора (абоненту по телефону
// зачитывают только первые символы uuid). При нескольких совпадениях
// возвращается самая свежая.
func (r *ComplaintRepository) GetByIDPrefix(ctx context.Context, prefix string) (*models.Complaint, error) {
	var complaint models.Complaint
	query := `
		SELECT ` + complaintColumns + `
		FROM complaints
		WHERE id::text LIKE $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &complaint, query, prefix+"%"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrComplaintNotFound
		}
		return nil, fmt.Errorf("complaint repository: get by id prefix %w", err)
	}
	return &complaint, nil
}

// UpdateStatus меняет статус жалобы и, при закрытии, время и длительность решения.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, estimationTime *string, resolvedAt *time.Time, resolutionDuration *string) error {
	query := `
		UPDATE complaints
		SET status = $1, estimation_time = $2, resolved_at = $3, resolution_duration = $4
		WHERE id = $5
	`
	res, err := r.db.ExecContext(ctx, query, status, estimationTime, resolvedAt, resolutionDuration, id)
	if err != nil {
		return fmt.Errorf("complaint repository: update status %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complaint repository: update status %w", err)
	}
	if affected == 0 {
		return ErrComplaintNotFound
	}
	return nil
}

// ListRecent возвращает последние жалобы для ops API.
func (r *ComplaintRepository) ListRecent(ctx context.Context, limit, offset int) ([]models.Complaint, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var complaints []models.Complaint
	query := `
		SELECT ` + complaintColumns + `
		FROM complaints
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &complaints, query, limit, offset); err != nil {
		return nil, fmt.Errorf("complaint repository: list recent %w", err)
	}
	return complaints, nil
}
