package businessflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	"github.com/sepehr-hosseini/simorgh-crm/models"
	"github.com/sepehr-hosseini/simorgh-crm/repository"
	"github.com/sepehr-hosseini/simorgh-crm/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxCallDuration caps the server-computed handling time. Anything above it
// means a stale timer (agent forgot to end the call), not a real conversation.
const MaxCallDuration = 6 * time.Hour

// CallFlow handles the call lifecycle: intake, dialing, ending, and the
// bookkeeping transitions in between
type CallFlow interface {
	CreateCall(ctx context.Context, request *dto.CreateCallRequest, metadata *ClientMetadata) (*dto.CallDTO, error)
	AnswerCall(ctx context.Context, callID, actorID uint, metadata *ClientMetadata) (*dto.CallDTO, error)
	EndCall(ctx context.Context, callID, actorID uint, request *dto.EndCallRequest, metadata *ClientMetadata) (*dto.CallDTO, error)
	MarkUnattended(ctx context.Context, callID, actorID uint, request *dto.CallbackRequest, metadata *ClientMetadata) (*dto.CallDTO, error)
	MarkCallback(ctx context.Context, callID, actorID uint, request *dto.CallbackRequest, metadata *ClientMetadata) (*dto.CallDTO, error)
	ResetCall(ctx context.Context, callID, actorID uint, metadata *ClientMetadata) (*dto.CallDTO, error)
	AssignAgent(ctx context.Context, callID uint, request *dto.AssignAgentRequest, metadata *ClientMetadata) (*dto.CallDTO, error)
	UpdateCall(ctx context.Context, callID uint, request *dto.UpdateCallRequest, metadata *ClientMetadata) (*dto.CallDTO, error)
	GetCall(ctx context.Context, callID uint) (*dto.CallWithHistoryDTO, error)
	ListCalls(ctx context.Context, request *dto.ListCallsRequest) (*dto.ListCallsResponse, error)
	CheckDuplicate(ctx context.Context, request *dto.DuplicateCheckRequest) (*dto.DuplicateCheckResponse, error)
}

// CallFlowImpl implements the call lifecycle business flow
type CallFlowImpl struct {
	callRepo    repository.CallRepository
	historyRepo repository.CallHistoryRepository
	userRepo    repository.UserRepository
	db          *gorm.DB
}

// NewCallFlow creates a new call flow instance
func NewCallFlow(
	callRepo repository.CallRepository,
	historyRepo repository.CallHistoryRepository,
	userRepo repository.UserRepository,
	db *gorm.DB,
) CallFlow {
	return &CallFlowImpl{
		callRepo:    callRepo,
		historyRepo: historyRepo,
		userRepo:    userRepo,
		db:          db,
	}
}

// CreateCall registers a new call record after running the duplicate guard:
// at most one call per phone number per calendar day.
func (cf *CallFlowImpl) CreateCall(ctx context.Context, request *dto.CreateCallRequest, metadata *ClientMetadata) (*dto.CallDTO, error) {
	if err := cf.validateCreateCallRequest(request); err != nil {
		return nil, NewBusinessError("CALL_VALIDATION_FAILED", "Call validation failed", err)
	}

	callDate, err := parseCallDate(request.CallDate)
	if err != nil {
		return nil, NewBusinessError("CALL_VALIDATION_FAILED", "Invalid call date", err)
	}

	resp, err := cf.WithCallTransaction(ctx, func(ctx context.Context) (*dto.CallDTO, error) {
		existing, err := cf.callRepo.FindDuplicate(ctx, strings.TrimSpace(request.Phone), callDate)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrDuplicateCall
		}

		if request.AgentID != nil {
			if err := cf.requireActiveAgent(ctx, *request.AgentID); err != nil {
				return nil, err
			}
		}

		call := &models.Call{
			UUID:         uuid.New(),
			CallDate:     callDate,
			CustomerName: strings.TrimSpace(request.CustomerName),
			Phone:        strings.TrimSpace(request.Phone),
			Quantity:     1,
			Status:       models.CallStatusNew,
			CallType:     models.CallTypeConfirmation,
			AgentID:      request.AgentID,
		}
		if request.Quantity > 0 {
			call.Quantity = request.Quantity
		}
		if request.CallType != "" {
			call.CallType = models.CallType(request.CallType)
		}
		call.AWB = optString(request.AWB)
		call.Address = optString(request.Address)
		call.OrderSKU = optString(request.OrderSKU)
		call.Remarks = optString(request.Remarks)

		if request.CurrentPrice != "" {
			price, err := decimal.NewFromString(request.CurrentPrice)
			if err != nil || price.IsNegative() {
				return nil, NewBusinessError("CALL_VALIDATION_FAILED", "Invalid current price", err)
			}
			call.CurrentPrice = price
		}
		if request.ShippingFee != "" {
			fee, err := decimal.NewFromString(request.ShippingFee)
			if err != nil || fee.IsNegative() {
				return nil, NewBusinessError("CALL_VALIDATION_FAILED", "Invalid shipping fee", err)
			}
			call.ShippingFee = fee
		}

		if err := cf.callRepo.Save(ctx, call); err != nil {
			return nil, err
		}

		result := ToCallDTO(*call)
		return &result, nil
	})

	if err != nil {
		if IsDuplicateCall(err) || IsBusinessError(err) {
			return nil, err
		}
		return nil, NewBusinessError("CALL_CREATE_FAILED", "Failed to create call", err)
	}
	return resp, nil
}

// AnswerCall moves a call into in_progress and starts the handling timer.
// An unassigned call is claimed by the acting agent.
func (cf *CallFlowImpl) AnswerCall(ctx context.Context, callID, actorID uint, metadata *ClientMetadata) (*dto.CallDTO, error) {
	return cf.WithCallTransaction(ctx, func(ctx context.Context) (*dto.CallDTO, error) {
		call, err := cf.loadCall(ctx, callID)
		if err != nil {
			return nil, err
		}
		if !call.CanTransitionTo(models.CallStatusInProgress) {
			return nil, transitionError(call.Status, models.CallStatusInProgress)
		}

		now := utils.UTCNow()
		call.Status = models.CallStatusInProgress
		call.CallStartedAt = &now
		call.CallEndedAt = nil
		call.CallDuration = nil
		if call.AgentID == nil && actorID != 0 {
			call.AgentID = &actorID
		}

		if err := cf.callRepo.Update(ctx, call); err != nil {
			return nil, err
		}
		if err := cf.appendHistory(ctx, call.ID, actorID, models.CallHistoryActionStarted, nil); err != nil {
			return nil, err
		}

		result := ToCallDTO(*call)
		return &result, nil
	})
}

// EndCall finishes an in-progress call. With an order on the record the call
// completes; without one it is only marked called and may be re-dialed later.
func (cf *CallFlowImpl) EndCall(ctx context.Context, callID, actorID uint, request *dto.EndCallRequest, metadata *ClientMetadata) (*dto.CallDTO, error) {
	return cf.WithCallTransaction(ctx, func(ctx context.Context) (*dto.CallDTO, error) {
		call, err := cf.loadCall(ctx, callID)
		if err != nil {
			return nil, err
		}
		if call.Status != models.CallStatusInProgress {
			return nil, ErrCallNotInProgress
		}

		target := models.CallStatusCalled
		if call.HasOrder() {
			target = models.CallStatusCompleted
		}
		if !call.CanTransitionTo(target) {
			return nil, transitionError(call.Status, target)
		}

		now := utils.UTCNow()
		call.Status = target
		call.CallEndedAt = &now
		call.CallDuration = boundDuration(call.CallStartedAt, now)
		if request != nil && request.Remarks != "" {
			call.Remarks = optString(request.Remarks)
		}

		if err := cf.callRepo.Update(ctx, call); err != nil {
			return nil, err
		}
		if err := cf.appendHistory(ctx, call.ID, actorID, models.CallHistoryActionEnded, optString(string(target))); err != nil {
			return nil, err
		}

		result := ToCallDTO(*call)
		return &result, nil
	})
}

// MarkUnattended flags a call nobody picked up. Order fields stay untouched.
func (cf *CallFlowImpl) MarkUnattended(ctx context.Context, callID, actorID uint, request *dto.CallbackRequest, metadata *ClientMetadata) (*dto.CallDTO, error) {
	return cf.markAside(ctx, callID, actorID, request, models.CallStatusUnattended, models.CallHistoryActionMarkedUnattended)
}

// MarkCallback flags a call the customer asked to receive later.
func (cf *CallFlowImpl) MarkCallback(ctx context.Context, callID, actorID uint, request *dto.CallbackRequest, metadata *ClientMetadata) (*dto.CallDTO, error) {
	return cf.markAside(ctx, callID, actorID, request, models.CallStatusCallback, models.CallHistoryActionMarkedCallback)
}

func (cf *CallFlowImpl) markAside(ctx context.Context, callID, actorID uint, request *dto.CallbackRequest, target models.CallStatus, action string) (*dto.CallDTO, error) {
	return cf.WithCallTransaction(ctx, func(ctx context.Context) (*dto.CallDTO, error) {
		call, err := cf.loadCall(ctx, callID)
		if err != nil {
			return nil, err
		}
		if !call.CanTransitionTo(target) {
			return nil, transitionError(call.Status, target)
		}

		now := utils.UTCNow()
		call.Status = target
		// Capture elapsed handling time if a timer was running
		if call.CallStartedAt != nil && call.CallEndedAt == nil {
			call.CallEndedAt = &now
			call.CallDuration = boundDuration(call.CallStartedAt, now)
		}
		if request != nil && request.Remarks != "" {
			call.Remarks = optString(request.Remarks)
		}

		if err := cf.callRepo.Update(ctx, call); err != nil {
			return nil, err
		}
		if err := cf.appendHistory(ctx, call.ID, actorID, action, nil); err != nil {
			return nil, err
		}

		result := ToCallDTO(*call)
		return &result, nil
	})
}

// ResetCall is the undo hatch: it returns a record to new from any state and
// clears the timer fields. Order and upsell bookkeeping is preserved.
func (cf *CallFlowImpl) ResetCall(ctx context.Context, callID, actorID uint, metadata *ClientMetadata) (*dto.CallDTO, error) {
	return cf.WithCallTransaction(ctx, func(ctx context.Context) (*dto.CallDTO, error) {
		call, err := cf.loadCall(ctx, callID)
		if err != nil {
			return nil, err
		}

		previous := call.Status
		call.Status = models.CallStatusNew
		call.CallStartedAt = nil
		call.CallEndedAt = nil
		call.CallDuration = nil

		if err := cf.callRepo.Update(ctx, call); err != nil {
			return nil, err
		}
		if err := cf.appendHistory(ctx, call.ID, actorID, models.CallHistoryActionReset, optString("was "+string(previous))); err != nil {
			return nil, err
		}

		result := ToCallDTO(*call)
		return &result, nil
	})
}

// AssignAgent hands a call to a specific active agent
func (cf *CallFlowImpl) AssignAgent(ctx context.Context, callID uint, request *dto.AssignAgentRequest, metadata *ClientMetadata) (*dto.CallDTO, error) {
	return cf.WithCallTransaction(ctx, func(ctx context.Context) (*dto.CallDTO, error) {
		call, err := cf.loadCall(ctx, callID)
		if err != nil {
			return nil, err
		}
		if err := cf.requireActiveAgent(ctx, request.AgentID); err != nil {
			return nil, err
		}

		call.AgentID = &request.AgentID
		if err := cf.callRepo.Update(ctx, call); err != nil {
			return nil, err
		}

		result := ToCallDTO(*call)
		return &result, nil
	})
}

// UpdateCall applies partial edits to customer and shipment fields
func (cf *CallFlowImpl) UpdateCall(ctx context.Context, callID uint, request *dto.UpdateCallRequest, metadata *ClientMetadata) (*dto.CallDTO, error) {
	return cf.WithCallTransaction(ctx, func(ctx context.Context) (*dto.CallDTO, error) {
		call, err := cf.loadCall(ctx, callID)
		if err != nil {
			return nil, err
		}

		if request.CustomerName != nil {
			name := strings.TrimSpace(*request.CustomerName)
			if name == "" {
				return nil, ErrCustomerNameRequired
			}
			call.CustomerName = name
		}
		if request.AWB != nil {
			call.AWB = optString(*request.AWB)
		}
		if request.Address != nil {
			call.Address = optString(*request.Address)
		}
		if request.Quantity != nil && *request.Quantity > 0 {
			call.Quantity = *request.Quantity
		}
		if request.ShippingFee != nil {
			fee, err := decimal.NewFromString(*request.ShippingFee)
			if err != nil || fee.IsNegative() {
				return nil, NewBusinessError("CALL_VALIDATION_FAILED", "Invalid shipping fee", err)
			}
			call.ShippingFee = fee
		}
		if request.Remarks != nil {
			call.Remarks = optString(*request.Remarks)
		}

		if err := cf.callRepo.Update(ctx, call); err != nil {
			return nil, err
		}

		result := ToCallDTO(*call)
		return &result, nil
	})
}

// GetCall returns a call together with its full audit trail
func (cf *CallFlowImpl) GetCall(ctx context.Context, callID uint) (*dto.CallWithHistoryDTO, error) {
	call, err := cf.loadCall(ctx, callID)
	if err != nil {
		return nil, err
	}

	entries, err := cf.historyRepo.ListByCall(ctx, call.ID)
	if err != nil {
		return nil, NewBusinessError("CALL_HISTORY_FAILED", "Failed to load call history", err)
	}

	out := &dto.CallWithHistoryDTO{
		Call:    ToCallDTO(*call),
		History: make([]dto.CallHistoryDTO, 0, len(entries)),
	}
	for _, entry := range entries {
		out.History = append(out.History, ToCallHistoryDTO(*entry))
	}
	return out, nil
}

// ListCalls returns a filtered, paginated page of calls, newest first
func (cf *CallFlowImpl) ListCalls(ctx context.Context, request *dto.ListCallsRequest) (*dto.ListCallsResponse, error) {
	page, pageSize, err := normalizePagination(request.Page, request.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_VALIDATION_FAILED", "Invalid pagination", err)
	}

	filter, err := buildCallFilter(request)
	if err != nil {
		return nil, NewBusinessError("LIST_VALIDATION_FAILED", "Invalid filter", err)
	}

	total, err := cf.callRepo.Count(ctx, *filter)
	if err != nil {
		return nil, NewBusinessError("CALL_LIST_FAILED", "Failed to count calls", err)
	}

	calls, err := cf.callRepo.ByFilter(ctx, *filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("CALL_LIST_FAILED", "Failed to list calls", err)
	}

	out := &dto.ListCallsResponse{
		Calls: make([]dto.CallDTO, 0, len(calls)),
		Pagination: dto.PaginationDTO{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
	for _, call := range calls {
		out.Calls = append(out.Calls, ToCallDTO(*call))
	}
	return out, nil
}

// CheckDuplicate runs the duplicate guard for a phone and date without
// creating anything
func (cf *CallFlowImpl) CheckDuplicate(ctx context.Context, request *dto.DuplicateCheckRequest) (*dto.DuplicateCheckResponse, error) {
	date := utils.UTCNow()
	if request.Date != "" {
		var err error
		date, err = parseCallDate(request.Date)
		if err != nil {
			return nil, NewBusinessError("CALL_VALIDATION_FAILED", "Invalid date", err)
		}
	}

	existing, err := cf.callRepo.FindDuplicate(ctx, strings.TrimSpace(request.Phone), date)
	if err != nil {
		return nil, NewBusinessError("DUPLICATE_CHECK_FAILED", "Duplicate check failed", err)
	}

	out := &dto.DuplicateCheckResponse{Duplicate: existing != nil}
	if existing != nil {
		found := ToCallDTO(*existing)
		out.Call = &found
	}
	return out, nil
}

// Private helper methods

func (cf *CallFlowImpl) loadCall(ctx context.Context, callID uint) (*models.Call, error) {
	call, err := cf.callRepo.ByID(ctx, callID)
	if err != nil {
		return nil, err
	}
	if call == nil {
		return nil, ErrCallNotFound
	}
	return call, nil
}

func (cf *CallFlowImpl) requireActiveAgent(ctx context.Context, agentID uint) error {
	agent, err := cf.userRepo.ByID(ctx, agentID)
	if err != nil {
		return err
	}
	if agent == nil {
		return ErrAgentNotFound
	}
	if !agent.IsAgent() {
		return ErrNotAnAgent
	}
	if !utils.IsTrue(agent.IsActive) {
		return ErrAgentInactive
	}
	return nil
}

func (cf *CallFlowImpl) appendHistory(ctx context.Context, callID, actorID uint, action string, note *string) error {
	entry := &models.CallHistory{
		CallID: callID,
		Action: action,
		Note:   note,
	}
	if actorID != 0 {
		entry.AgentID = &actorID
	}
	return cf.historyRepo.Save(ctx, entry)
}

func (cf *CallFlowImpl) validateCreateCallRequest(request *dto.CreateCallRequest) error {
	if strings.TrimSpace(request.CustomerName) == "" {
		return ErrCustomerNameRequired
	}
	if strings.TrimSpace(request.Phone) == "" {
		return ErrPhoneRequired
	}
	return nil
}

func (cf *CallFlowImpl) WithCallTransaction(ctx context.Context, fn func(context.Context) (*dto.CallDTO, error)) (*dto.CallDTO, error) {
	var result *dto.CallDTO
	var fnErr error

	err := repository.WithTransaction(ctx, cf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

// Shared flow helpers

// parseCallDate accepts a bare date or RFC3339 timestamp; empty means today.
func parseCallDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return utils.UTCNow(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// boundDuration computes whole seconds between start and end, clamped to
// [0, MaxCallDuration]. A missing start yields nil.
func boundDuration(start *time.Time, end time.Time) *int {
	if start == nil {
		return nil
	}
	elapsed := end.Sub(*start)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > MaxCallDuration {
		elapsed = MaxCallDuration
	}
	seconds := int(elapsed.Seconds())
	return &seconds
}

func normalizePagination(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = utils.DefaultPageSize
	}
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > utils.MaxPageSize {
		return 0, 0, ErrInvalidPageSize
	}
	return page, pageSize, nil
}

func buildCallFilter(request *dto.ListCallsRequest) (*models.CallFilter, error) {
	filter := &models.CallFilter{
		AgentID:  request.AgentID,
		Phone:    request.Phone,
		IsUpsell: request.IsUpsell,
	}
	if request.Status != nil {
		status := models.CallStatus(*request.Status)
		if !models.ValidCallStatus(status) {
			return nil, fmt.Errorf("unknown call status %q", *request.Status)
		}
		filter.Status = &status
	}
	if request.CallType != nil {
		callType := models.CallType(*request.CallType)
		filter.CallType = &callType
	}
	if request.StartDate != nil && *request.StartDate != "" {
		start, err := parseCallDate(*request.StartDate)
		if err != nil {
			return nil, err
		}
		filter.DateAfter = &start
	}
	if request.EndDate != nil && *request.EndDate != "" {
		end, err := parseCallDate(*request.EndDate)
		if err != nil {
			return nil, err
		}
		filter.DateBefore = &end
	}
	if filter.DateAfter != nil && filter.DateBefore != nil && filter.DateAfter.After(*filter.DateBefore) {
		return nil, ErrStartDateAfterEndDate
	}
	return filter, nil
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func transitionError(from, to models.CallStatus) error {
	return NewBusinessErrorf("INVALID_TRANSITION", "Cannot move call from %s to %s", ErrInvalidTransition, from, to)
}
