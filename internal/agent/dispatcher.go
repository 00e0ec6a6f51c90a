package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ignatzorin/complaint-voice-backend/internal/logger"
	"github.com/ignatzorin/complaint-voice-backend/internal/models"
	"github.com/ignatzorin/complaint-voice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/complaint-voice-backend/internal/service"
	"github.com/ignatzorin/complaint-voice-backend/pkg/metrics"
)

// Имена функций, которые агент может запросить. Набор фиксированный.
const (
	FuncRaiseComplaint  = "raise_complaint"
	FuncLookupComplaint = "lookup_complaint"
)

// ComplaintStore описывает две операции хранилища, доступные из разговора.
type ComplaintStore interface {
	Create(ctx context.Context, in service.CreateComplaintInput) (*service.CreateComplaintResult, error)
	Lookup(ctx context.Context, ref string) (*models.Complaint, error)
}

// Dispatcher выполняет function call запросы агента. Ошибки любого рода
// превращаются в структурный ответ с тем же correlation id, чтобы разговор
// продолжался и соединение не рвалось.
type Dispatcher struct {
	store   ComplaintStore
	timeout time.Duration
	m       *metrics.Metrics
}

// NewDispatcher создаёт диспетчер. timeout ограничивает каждую операцию
// хранилища, чтобы медленная база не подвесила звонок.
func NewDispatcher(store ComplaintStore, timeout time.Duration, m *metrics.Metrics) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{store: store, timeout: timeout, m: m}
}

// Dispatch выполняет один запрос и возвращает ответ для отправки агенту.
// Вызывается из цикла чтения моста последовательно, поэтому ответы уходят
// в порядке поступления запросов.
func (d *Dispatcher) Dispatch(ctx context.Context, call FunctionCall) FunctionCallResponse {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var content string
	var outcome string

	switch call.Name {
	case FuncRaiseComplaint:
		content, outcome = d.raiseComplaint(ctx, call.Arguments)
	case FuncLookupComplaint:
		content, outcome = d.lookupComplaint(ctx, call.Arguments)
	default:
		content = fmt.Sprintf("Error: Unknown function: %s", call.Name)
		outcome = "unknown"
	}

	if d.m != nil {
		d.m.FunctionCalls.WithLabelValues(call.Name, outcome).Inc()
	}

	logger.L().WithFields(map[string]interface{}{
		"function": call.Name,
		"call_id":  call.ID,
		"outcome":  outcome,
	}).Info("function call обработан")

	return NewFunctionCallResponse(call.ID, call.Name, content)
}

// raiseComplaintArgs описывает аргументы raise_complaint в том виде, как их собирает агент.
type raiseComplaintArgs struct {
	Name            string  `json:"name"`
	ProblemDetails  string  `json:"problem_details"`
	ServiceNo       *string `json:"service_no"`
	AreaDescription *string `json:"area_description"`
	Landmark        *string `json:"landmark"`
}

func (d *Dispatcher) raiseComplaint(ctx context.Context, rawArgs string) (content, outcome string) {
	var args raiseComplaintArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "Error: could not parse function arguments", "invalid"
	}

	result, err := d.store.Create(ctx, service.CreateComplaintInput{
		Name:            args.Name,
		ProblemDetails:  args.ProblemDetails,
		ServiceNo:       args.ServiceNo,
		AreaDescription: args.AreaDescription,
		Landmark:        args.Landmark,
	})
	if err != nil {
		return errorContent(err), errorOutcome(err)
	}

	// Агенту нужен короткий текст для озвучивания, а не вложенный JSON.
	// Идентификатор сокращаем до первых 8 символов: столько абонент
	// реально запишет со слуха.
	shortID := result.ComplaintID.String()[:8]
	return fmt.Sprintf("Complaint registered successfully. Number: %d, ID: %s...", result.ComplaintNo, shortID), "success"
}

// lookupComplaintArgs описывает аргументы lookup_complaint.
type lookupComplaintArgs struct {
	ComplaintNo *int64 `json:"complaint_no"`
	ComplaintID string `json:"complaint_id"`
}

func (d *Dispatcher) lookupComplaint(ctx context.Context, rawArgs string) (content, outcome string) {
	var args lookupComplaintArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "Error: could not parse function arguments", "invalid"
	}

	ref := args.ComplaintID
	if args.ComplaintNo != nil {
		ref = strconv.FormatInt(*args.ComplaintNo, 10)
	}
	if ref == "" {
		return "Error: Provide complaint_no or complaint_id", "invalid"
	}

	complaint, err := d.store.Lookup(ctx, ref)
	if err != nil {
		if apperror.IsNotFound(err) {
			return "Error: Complaint not found", "not_found"
		}
		return errorContent(err), errorOutcome(err)
	}

	summary := fmt.Sprintf("Found complaint %d with status: %s. Created: %s",
		complaint.ComplaintNo, complaint.Status, complaint.CreatedAt.Format("2006-01-02"))
	if complaint.EstimationTime != nil {
		summary += ". Estimated resolution: " + *complaint.EstimationTime
	}
	if complaint.Resolved() && complaint.ResolutionDuration != nil {
		summary += ". Resolved in " + *complaint.ResolutionDuration
	}
	return summary, "success"
}

// errorContent формирует озвучиваемый текст ошибки без технических деталей.
func errorContent(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperror.ErrCodeValidation:
			return "Error: " + appErr.Message
		case apperror.ErrCodeTimeout:
			return "Error: the complaint system is responding slowly, please try again"
		}
	}
	return "Error: the complaint system is temporarily unavailable"
}

func errorOutcome(err error) string {
	if apperror.IsValidation(err) {
		return "invalid"
	}
	if apperror.IsTimeout(err) {
		return "timeout"
	}
	return "error"
}
