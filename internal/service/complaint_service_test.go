package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/complaint-voice-backend/internal/models"
	"github.com/ignatzorin/complaint-voice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/complaint-voice-backend/internal/repository"
)

// mockComplaintRepo реализует ComplaintRepository для тестов.
type mockComplaintRepo struct {
	byID   map[uuid.UUID]*models.Complaint
	nextNo int64
}

func newMockComplaintRepo() *mockComplaintRepo {
	return &mockComplaintRepo{
		byID:   make(map[uuid.UUID]*models.Complaint),
		nextNo: 1,
	}
}

func (m *mockComplaintRepo) Create(ctx context.Context, c *models.Complaint) error {
	c.ComplaintNo = m.nextNo
	m.nextNo++
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *mockComplaintRepo) GetByNo(ctx context.Context, no int64) (*models.Complaint, error) {
	for _, c := range m.byID {
		if c.ComplaintNo == no {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrComplaintNotFound
}

func (m *mockComplaintRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	if c, ok := m.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, repository.ErrComplaintNotFound
}

func (m *mockComplaintRepo) GetByIDPrefix(ctx context.Context, prefix string) (*models.Complaint, error) {
	var matches []*models.Complaint
	for _, c := range m.byID {
		if strings.HasPrefix(c.ID.String(), prefix) {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil, repository.ErrComplaintNotFound
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	cp := *matches[0]
	return &cp, nil
}

func (m *mockComplaintRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, estimationTime *string, resolvedAt *time.Time, resolutionDuration *string) error {
	c, ok := m.byID[id]
	if !ok {
		return repository.ErrComplaintNotFound
	}
	c.Status = status
	c.EstimationTime = estimationTime
	c.ResolvedAt = resolvedAt
	c.ResolutionDuration = resolutionDuration
	return nil
}

func (m *mockComplaintRepo) ListRecent(ctx context.Context, limit, offset int) ([]models.Complaint, error) {
	var all []models.Complaint
	for _, c := range m.byID {
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

func TestComplaintService_CreateRequiresNameAndDetails(t *testing.T) {
	svc := NewComplaintService(newMockComplaintRepo(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateComplaintInput{Name: "  ", ProblemDetails: "no power"})
	if !apperror.IsValidation(err) {
		t.Fatalf("ожидалась ошибка валидации, получили %v", err)
	}

	_, err = svc.Create(ctx, CreateComplaintInput{Name: "Ivan", ProblemDetails: ""})
	if !apperror.IsValidation(err) {
		t.Fatalf("ожидалась ошибка валидации, получили %v", err)
	}
}

func TestComplaintService_CreateDefaults(t *testing.T) {
	repo := newMockComplaintRepo()
	svc := NewComplaintService(repo, nil)

	empty := "   "
	res, err := svc.Create(context.Background(), CreateComplaintInput{
		Name:           " Ivan ",
		ProblemDetails: "no power since morning",
		ServiceNo:      &empty,
	})
	if err != nil {
		t.Fatalf("create вернул ошибку: %v", err)
	}

	if res.ComplaintNo != 1 {
		t.Fatalf("ожидался номер 1, получили %d", res.ComplaintNo)
	}
	if res.ComplaintID == uuid.Nil {
		t.Fatal("идентификатор должен быть установлен")
	}
	if res.Status != models.ComplaintStatusPatrolling {
		t.Fatalf("новая жалоба должна быть в статусе patrolling, получили %q", res.Status)
	}

	saved := repo.byID[res.ComplaintID]
	if saved.Name != "Ivan" {
		t.Fatalf("имя должно быть обрезано, получили %q", saved.Name)
	}
	if saved.ServiceNo != nil {
		t.Fatal("пустой service_no должен превратиться в nil")
	}
}

func TestComplaintService_Lookup(t *testing.T) {
	repo := newMockComplaintRepo()
	svc := NewComplaintService(repo, nil)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateComplaintInput{Name: "Ivan", ProblemDetails: "no power"})
	if err != nil {
		t.Fatalf("create вернул ошибку: %v", err)
	}

	// По номеру.
	c, err := svc.Lookup(ctx, "1")
	if err != nil || c.ComplaintNo != res.ComplaintNo {
		t.Fatalf("поиск по номеру не нашёл жалобу: %v", err)
	}

	// По полному идентификатору, регистр не важен.
	c, err = svc.Lookup(ctx, strings.ToUpper(res.ComplaintID.String()))
	if err != nil || c.ID != res.ComplaintID {
		t.Fatalf("поиск по uuid не нашёл жалобу: %v", err)
	}

	// По началу идентификатора.
	c, err = svc.Lookup(ctx, res.ComplaintID.String()[:8])
	if err != nil || c.ID != res.ComplaintID {
		t.Fatalf("поиск по префиксу не нашёл жалобу: %v", err)
	}
}

func TestComplaintService_LookupErrors(t *testing.T) {
	svc := NewComplaintService(newMockComplaintRepo(), nil)
	ctx := context.Background()

	if _, err := svc.Lookup(ctx, "999"); !apperror.IsNotFound(err) {
		t.Fatalf("ожидался NOT_FOUND, получили %v", err)
	}
	if _, err := svc.Lookup(ctx, ""); !apperror.IsValidation(err) {
		t.Fatalf("пустая ссылка должна давать ошибку валидации, получили %v", err)
	}
	if _, err := svc.Lookup(ctx, "zzz"); !apperror.IsValidation(err) {
		t.Fatalf("не-hex строка должна давать ошибку валидации, получили %v", err)
	}
	// Слишком короткий префикс неоднозначен.
	if _, err := svc.Lookup(ctx, "ab"); !apperror.IsValidation(err) {
		t.Fatalf("короткий префикс должен давать ошибку валидации, получили %v", err)
	}
}

func TestComplaintService_UpdateStatus(t *testing.T) {
	repo := newMockComplaintRepo()
	svc := NewComplaintService(repo, nil)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateComplaintInput{Name: "Ivan", ProblemDetails: "no power"})
	if err != nil {
		t.Fatalf("create вернул ошибку: %v", err)
	}

	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{ComplaintID: res.ComplaintID, Status: "fixed maybe"})
	if !apperror.IsValidation(err) {
		t.Fatalf("неизвестный статус должен давать ошибку валидации, получили %v", err)
	}

	est := "2 hours"
	updated, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		ComplaintID:    res.ComplaintID,
		Status:         models.ComplaintStatusCrewAssigned,
		EstimationTime: &est,
	})
	if err != nil {
		t.Fatalf("update вернул ошибку: %v", err)
	}
	if updated.Status != models.ComplaintStatusCrewAssigned || updated.EstimationTime == nil {
		t.Fatalf("статус и оценка должны обновиться: %+v", updated)
	}
	if updated.ResolvedAt != nil {
		t.Fatal("промежуточный статус не закрывает жалобу")
	}
}

func TestComplaintService_UpdateStatusResolves(t *testing.T) {
	repo := newMockComplaintRepo()
	svc := NewComplaintService(repo, nil)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateComplaintInput{Name: "Ivan", ProblemDetails: "no power"})
	if err != nil {
		t.Fatalf("create вернул ошибку: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		ComplaintID: res.ComplaintID,
		Status:      models.ComplaintStatusFaultRectified,
	})
	if err != nil {
		t.Fatalf("update вернул ошибку: %v", err)
	}
	if updated.ResolvedAt == nil || updated.ResolutionDuration == nil {
		t.Fatal("закрытие должно проставить resolved_at и resolution_duration")
	}

	// Закрытую жалобу менять нельзя.
	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{
		ComplaintID: res.ComplaintID,
		Status:      models.ComplaintStatusPatrolling,
	})
	var appErr *apperror.AppError
	if err == nil {
		t.Fatal("ожидалась ошибка на закрытой жалобе")
	}
	if !errors.As(err, &appErr) || appErr.Code != apperror.ErrCodeConflict {
		t.Fatalf("ожидался CONFLICT, получили %v", err)
	}
}

func TestComplaintService_UpdateStatusNotFound(t *testing.T) {
	svc := NewComplaintService(newMockComplaintRepo(), nil)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		ComplaintID: uuid.New(),
		Status:      models.ComplaintStatusCrewAssigned,
	})
	if !apperror.IsNotFound(err) {
		t.Fatalf("ожидался NOT_FOUND, получили %v", err)
	}
}
