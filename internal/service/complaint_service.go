package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/complaint-voice-backend/internal/logger"
	"github.com/ignatzorin/complaint-voice-backend/internal/models"
	"github.com/ignatzorin/complaint-voice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/complaint-voice-backend/internal/repository"
	"github.com/ignatzorin/complaint-voice-backend/internal/validation"
	"github.com/ignatzorin/complaint-voice-backend/pkg/metrics"
)

// ComplaintRepository описывает зависимости ComplaintService от слоя хранилища.
type ComplaintRepository interface {
	Create(ctx context.Context, c *models.Complaint) error
	GetByNo(ctx context.Context, no int64) (*models.Complaint, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error)
	GetByIDPrefix(ctx context.Context, prefix string) (*models.Complaint, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, estimationTime *string, resolvedAt *time.Time, resolutionDuration *string) error
	ListRecent(ctx context.Context, limit, offset int) ([]models.Complaint, error)
}

// ComplaintService инкапсулирует бизнес-логику работы с жалобами.
type ComplaintService struct {
	repo ComplaintRepository
	m    *metrics.Metrics
}

// CreateComplaintInput содержит данные новой жалобы, собранные агентом в разговоре.
type CreateComplaintInput struct {
	Name            string
	ProblemDetails  string
	ServiceNo       *string
	AreaDescription *string
	Landmark        *string
}

// CreateComplaintResult возвращает абоненту ключи созданной записи.
type CreateComplaintResult struct {
	ComplaintNo int64
	ComplaintID uuid.UUID
	Status      string
	CreatedAt   time.Time
}

// UpdateStatusInput содержит данные для смены статуса через ops API.
type UpdateStatusInput struct {
	ComplaintID    uuid.UUID
	Status         string
	EstimationTime *string
	OperatorID     uuid.UUID
}

// NewComplaintService создаёт сервис жалоб. Метрики опциональны.
func NewComplaintService(repo ComplaintRepository, m *metrics.Metrics) *ComplaintService {
	return &ComplaintService{repo: repo, m: m}
}

// Create регистрирует новую жалобу со статусом "patrolling".
// Имя и описание проблемы обязательны; остальные поля агент может не собрать.
func (s *ComplaintService) Create(ctx context.Context, in CreateComplaintInput) (*CreateComplaintResult, error) {
	if err := validation.ValidateRequired("name", in.Name); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "missing required fields: name and problem_details")
	}
	if err := validation.ValidateRequired("problem_details", in.ProblemDetails); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "missing required fields: name and problem_details")
	}
	if err := validation.ValidateLength("name", in.Name, 0, validation.MaxNameLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "name слишком длинный")
	}
	if err := validation.ValidateLength("problem_details", in.ProblemDetails, 0, validation.MaxProblemDetailsLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "problem_details слишком длинный")
	}

	complaint := &models.Complaint{
		ID:              uuid.New(),
		ServiceNo:       validation.NormalizeOptional(in.ServiceNo),
		Name:            strings.TrimSpace(in.Name),
		AreaDescription: validation.NormalizeOptional(in.AreaDescription),
		Landmark:        validation.NormalizeOptional(in.Landmark),
		ProblemDetails:  strings.TrimSpace(in.ProblemDetails),
		Status:          models.ComplaintStatusPatrolling,
		CreatedAt:       time.Now().UTC(),
	}

	start := time.Now()
	err := s.repo.Create(ctx, complaint)
	s.observeStoreOp("create", start)
	if err != nil {
		return nil, s.storeError("create", err, "не удалось сохранить жалобу")
	}

	return &CreateComplaintResult{
		ComplaintNo: complaint.ComplaintNo,
		ComplaintID: complaint.ID,
		Status:      complaint.Status,
		CreatedAt:   complaint.CreatedAt,
	}, nil
}

// Lookup ищет жалобу по тому, что продиктовал абонент: номер жалобы,
// полный идентификатор или его начало. "Не найдена" считается нормальным результатом,
// возвращается apperror c кодом NOT_FOUND, а не сбой хранилища.
func (s *ComplaintService) Lookup(ctx context.Context, ref string) (*models.Complaint, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "provide complaint_no or complaint_id")
	}

	start := time.Now()
	complaint, err := s.lookup(ctx, ref)
	s.observeStoreOp("lookup", start)
	if err != nil {
		if errors.Is(err, repository.ErrComplaintNotFound) {
			return nil, apperror.ErrComplaintNotFound
		}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, s.storeError("lookup", err, "не удалось найти жалобу")
	}
	return complaint, nil
}

func (s *ComplaintService) lookup(ctx context.Context, ref string) (*models.Complaint, error) {
	// Строка из одних цифр трактуется как порядковый номер жалобы.
	if no, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.repo.GetByNo(ctx, no)
	}

	ref = strings.ToLower(ref)
	if id, err := uuid.Parse(ref); err == nil && len(ref) == 36 {
		return s.repo.GetByID(ctx, id)
	}

	// Начало uuid: абоненту обычно зачитывают первые 8 символов.
	if !isHexPrefix(ref) || len(ref) < 4 {
		return nil, apperror.New(apperror.ErrCodeValidation, "provide complaint_no or complaint_id")
	}
	return s.repo.GetByIDPrefix(ctx, ref)
}

// UpdateStatus меняет статус жалобы. При переходе в "fault rectified"
// проставляются resolved_at и resolution_duration; обратного перехода нет.
func (s *ComplaintService) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*models.Complaint, error) {
	if _, ok := models.ValidComplaintStatuses[in.Status]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный статус %q", in.Status))
	}
	if est := validation.NormalizeOptional(in.EstimationTime); est != nil {
		if err := validation.ValidateLength("estimation_time", *est, 0, validation.MaxEstimationTimeLength); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "estimation_time слишком длинный")
		}
		in.EstimationTime = est
	} else {
		in.EstimationTime = nil
	}

	current, err := s.repo.GetByID(ctx, in.ComplaintID)
	if err != nil {
		if errors.Is(err, repository.ErrComplaintNotFound) {
			return nil, apperror.ErrComplaintNotFound
		}
		return nil, s.storeError("update_status", err, "не удалось прочитать жалобу")
	}

	if current.Resolved() {
		return nil, apperror.New(apperror.ErrCodeConflict, "жалоба уже закрыта")
	}

	var resolvedAt *time.Time
	var resolutionDuration *string
	if in.Status == models.ComplaintStatusFaultRectified {
		now := time.Now().UTC()
		duration := now.Sub(current.CreatedAt).Round(time.Second).String()
		resolvedAt = &now
		resolutionDuration = &duration
	}

	start := time.Now()
	err = s.repo.UpdateStatus(ctx, in.ComplaintID, in.Status, in.EstimationTime, resolvedAt, resolutionDuration)
	s.observeStoreOp("update_status", start)
	if err != nil {
		if errors.Is(err, repository.ErrComplaintNotFound) {
			return nil, apperror.ErrComplaintNotFound
		}
		return nil, s.storeError("update_status", err, "не удалось обновить статус")
	}

	logger.L().WithFields(map[string]interface{}{
		"complaint_id": in.ComplaintID,
		"operator_id":  in.OperatorID,
		"status":       in.Status,
	}).Info("статус жалобы изменён")

	current.Status = in.Status
	current.EstimationTime = in.EstimationTime
	current.ResolvedAt = resolvedAt
	current.ResolutionDuration = resolutionDuration
	return current, nil
}

// ListRecent возвращает последние жалобы для ops API.
func (s *ComplaintService) ListRecent(ctx context.Context, limit, offset int) ([]models.Complaint, error) {
	complaints, err := s.repo.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, s.storeError("list", err, "не удалось получить список жалоб")
	}
	return complaints, nil
}

func (s *ComplaintService) storeError(operation string, err error, message string) error {
	if s.m != nil {
		s.m.ErrorsCount.WithLabelValues(operation).Inc()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.Wrap(err, apperror.ErrCodeTimeout, "хранилище не ответило вовремя")
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}

func (s *ComplaintService) observeStoreOp(operation string, start time.Time) {
	if s.m != nil {
		s.m.StoreOpTime.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// isHexPrefix проверяет, что строка похожа на начало uuid.
func isHexPrefix(v string) bool {
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r == '-':
		default:
			return false
		}
	}
	return true
}
