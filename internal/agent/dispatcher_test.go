package agent

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/complaint-voice-backend/internal/models"
	"github.com/ignatzorin/complaint-voice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/complaint-voice-backend/internal/service"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, in service.CreateComplaintInput) (*service.CreateComplaintResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CreateComplaintResult), args.Error(1)
}

func (m *mockStore) Lookup(ctx context.Context, ref string) (*models.Complaint, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func TestDispatcher_UnknownFunction(t *testing.T) {
	store := new(mockStore)
	d := NewDispatcher(store, time.Second, nil)

	resp := d.Dispatch(context.Background(), FunctionCall{
		ID:        "call-1",
		Name:      "update_complaint_status",
		Arguments: "{}",
	})

	assert.Equal(t, "FunctionCallResponse", resp.Type)
	assert.Equal(t, "call-1", resp.ID)
	assert.Equal(t, "update_complaint_status", resp.Name)
	assert.Equal(t, "Error: Unknown function: update_complaint_status", resp.Content)
	store.AssertNotCalled(t, "Create")
	store.AssertNotCalled(t, "Lookup")
}

func TestDispatcher_RaiseComplaint(t *testing.T) {
	store := new(mockStore)
	d := NewDispatcher(store, time.Second, nil)

	id := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")
	store.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateComplaintInput) bool {
		return in.Name == "Ivan" && in.ProblemDetails == "no power since morning"
	})).Return(&service.CreateComplaintResult{
		ComplaintNo: 7,
		ComplaintID: id,
		Status:      models.ComplaintStatusPatrolling,
	}, nil)

	resp := d.Dispatch(context.Background(), FunctionCall{
		ID:        "call-2",
		Name:      FuncRaiseComplaint,
		Arguments: `{"name":"Ivan","problem_details":"no power since morning"}`,
	})

	assert.Equal(t, "call-2", resp.ID)
	assert.Equal(t, "Complaint registered successfully. Number: 7, ID: a1b2c3d4...", resp.Content)
	store.AssertExpectations(t)
}

func TestDispatcher_RaiseComplaintValidationError(t *testing.T) {
	store := new(mockStore)
	d := NewDispatcher(store, time.Second, nil)

	store.On("Create", mock.Anything, mock.Anything).
		Return(nil, apperror.New(apperror.ErrCodeValidation, "missing required fields: name and problem_details"))

	resp := d.Dispatch(context.Background(), FunctionCall{
		ID:        "call-3",
		Name:      FuncRaiseComplaint,
		Arguments: `{"name":"Ivan"}`,
	})

	assert.Equal(t, "Error: missing required fields: name and problem_details", resp.Content)
}

func TestDispatcher_RaiseComplaintBadArguments(t *testing.T) {
	store := new(mockStore)
	d := NewDispatcher(store, time.Second, nil)

	resp := d.Dispatch(context.Background(), FunctionCall{
		ID:        "call-4",
		Name:      FuncRaiseComplaint,
		Arguments: "not json",
	})

	assert.Equal(t, "Error: could not parse function arguments", resp.Content)
	store.AssertNotCalled(t, "Create")
}

func TestDispatcher_LookupByNumber(t *testing.T) {
	store := new(mockStore)
	d := NewDispatcher(store, time.Second, nil)

	created := time.Date(2025, 8, 14, 10, 0, 0, 0, time.UTC)
	est := "2 hours"
	store.On("Lookup", mock.Anything, "42").Return(&models.Complaint{
		ComplaintNo:    42,
		Status:         models.ComplaintStatusCrewAssigned,
		CreatedAt:      created,
		EstimationTime: &est,
	}, nil)

	resp := d.Dispatch(context.Background(), FunctionCall{
		ID:        "call-5",
		Name:      FuncLookupComplaint,
		Arguments: `{"complaint_no":42}`,
	})

	assert.Equal(t, "Found complaint 42 with status: crew assigned. Created: 2025-08-14. Estimated resolution: 2 hours", resp.Content)
	store.AssertExpectations(t)
}

func TestDispatcher_LookupResolvedComplaint(t *testing.T) {
	store := new(mockStore)
	d := NewDispatcher(store, time.Second, nil)

	created := time.Date(2025, 8, 14, 10, 0, 0, 0, time.UTC)
	resolved := created.Add(3 * time.Hour)
	duration := "3h0m0s"
	store.On("Lookup", mock.Anything, "a1b2c3d4").Return(&models.Complaint{
		ComplaintNo:        42,
		Status:             models.ComplaintStatusFaultRectified,
		CreatedAt:          created,
		ResolvedAt:         &resolved,
		ResolutionDuration: &duration,
	}, nil)

	resp := d.Dispatch(context.Background(), FunctionCall{
		ID:        "call-6",
		Name:      FuncLookupComplaint,
		Arguments: `{"complaint_id":"a1b2c3d4"}`,
	})

	assert.Equal(t, "Found complaint 42 with status: fault rectified. Created: 2025-08-14. Resolved in 3h0m0s", resp.Content)
}

func TestDispatcher_LookupNotFound(t *testing.T) {
	store := new(mockStore)
	d := NewDispatcher(store, time.Second, nil)

	store.On("Lookup", mock.Anything, "999").Return(nil, apperror.ErrComplaintNotFound)

	resp := d.Dispatch(context.Background(), FunctionCall{
		ID:        "call-7",
		Name:      FuncLookupComplaint,
		Arguments: `{"complaint_no":999}`,
	})

	assert.Equal(t, "Error: Complaint not found", resp.Content)
}

func TestDispatcher_LookupWithoutReference(t *testing.T) {
	store := new(mockStore)
	d := NewDispatcher(store, time.Second, nil)

	resp := d.Dispatch(context.Background(), FunctionCall{
		ID:        "call-8",
		Name:      FuncLookupComplaint,
		Arguments: "{}",
	})

	assert.Equal(t, "Error: Provide complaint_no or complaint_id", resp.Content)
	store.AssertNotCalled(t, "Lookup")
}

func TestDispatcher_StoreTimeout(t *testing.T) {
	store := new(mockStore)
	d := NewDispatcher(store, time.Second, nil)

	store.On("Lookup", mock.Anything, "42").
		Return(nil, apperror.Wrap(context.DeadlineExceeded, apperror.ErrCodeTimeout, "хранилище не ответило вовремя"))

	resp := d.Dispatch(context.Background(), FunctionCall{
		ID:        "call-9",
		Name:      FuncLookupComplaint,
		Arguments: `{"complaint_no":42}`,
	})

	assert.Equal(t, "Error: the complaint system is responding slowly, please try again", resp.Content)
}
