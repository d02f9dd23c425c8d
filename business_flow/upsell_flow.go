package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	"github.com/sepehr-hosseini/simorgh-crm/models"
	"github.com/sepehr-hosseini/simorgh-crm/repository"
	"github.com/sepehr-hosseini/simorgh-crm/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UpsellFlow handles the order ledger: offering, accepting, and declining
// product upgrades during an in-progress call
type UpsellFlow interface {
	OfferUpsell(ctx context.Context, callID, actorID uint, request *dto.OfferUpsellRequest, metadata *ClientMetadata) (*dto.CallDTO, error)
	ApplyUpsell(ctx context.Context, callID, actorID uint, request *dto.ApplyUpsellRequest, metadata *ClientMetadata) (*dto.UpsellResultDTO, error)
	DeclineUpsell(ctx context.Context, callID, actorID uint, request *dto.DeclineUpsellRequest, metadata *ClientMetadata) (*dto.UpsellResultDTO, error)
}

// UpsellFlowImpl implements the upsell business flow
type UpsellFlowImpl struct {
	callRepo    repository.CallRepository
	productRepo repository.ProductRepository
	historyRepo repository.CallHistoryRepository
	db          *gorm.DB
}

// NewUpsellFlow creates a new upsell flow instance
func NewUpsellFlow(
	callRepo repository.CallRepository,
	productRepo repository.ProductRepository,
	historyRepo repository.CallHistoryRepository,
	db *gorm.DB,
) UpsellFlow {
	return &UpsellFlowImpl{
		callRepo:    callRepo,
		productRepo: productRepo,
		historyRepo: historyRepo,
		db:          db,
	}
}

// OfferUpsell records that a pitch was made. Nothing on the order changes.
func (uf *UpsellFlowImpl) OfferUpsell(ctx context.Context, callID, actorID uint, request *dto.OfferUpsellRequest, metadata *ClientMetadata) (*dto.CallDTO, error) {
	call, err := uf.loadInProgressCall(ctx, callID)
	if err != nil {
		return nil, err
	}

	note := "offered " + request.NewOrderSKU
	if request.Note != "" {
		note = request.Note
	}
	entry := &models.CallHistory{
		CallID: call.ID,
		Action: models.CallHistoryActionUpsellOffered,
		Note:   &note,
	}
	if actorID != 0 {
		entry.AgentID = &actorID
	}
	if err := uf.historyRepo.Save(ctx, entry); err != nil {
		return nil, NewBusinessError("UPSELL_OFFER_FAILED", "Failed to record upsell offer", err)
	}

	result := ToCallDTO(*call)
	return &result, nil
}

// ApplyUpsell accepts an upgrade: the first acceptance snapshots the original
// order once, then the current order is replaced and revenue recomputed as
// new price minus the original baseline. Re-upsells keep the first baseline.
func (uf *UpsellFlowImpl) ApplyUpsell(ctx context.Context, callID, actorID uint, request *dto.ApplyUpsellRequest, metadata *ClientMetadata) (*dto.UpsellResultDTO, error) {
	return uf.WithUpsellTransaction(ctx, func(ctx context.Context) (*dto.UpsellResultDTO, error) {
		call, err := uf.loadInProgressCall(ctx, callID)
		if err != nil {
			return nil, err
		}
		if !call.HasOrder() {
			return nil, ErrNoOriginalOrder
		}

		newSKU := strings.TrimSpace(request.NewOrderSKU)
		newPrice, err := uf.resolvePrice(ctx, newSKU, request.NewPrice)
		if err != nil {
			return nil, err
		}

		// Write-once baseline: only the very first upsell captures it
		if !call.HasOriginalSnapshot() {
			originalSKU := *call.OrderSKU
			originalPrice := call.CurrentPrice
			call.OriginalOrderSKU = &originalSKU
			call.OriginalPrice = &originalPrice
		}

		call.OrderSKU = &newSKU
		call.CurrentPrice = newPrice
		call.NewOrderSKU = &newSKU
		call.NewPrice = &newPrice
		revenue := newPrice.Sub(*call.OriginalPrice)
		call.Revenue = revenue
		call.IsUpsell = utils.ToPtr(true)

		if err := uf.callRepo.Update(ctx, call); err != nil {
			return nil, err
		}

		note := fmt.Sprintf("%s -> %s", *call.OriginalOrderSKU, newSKU)
		if request.Note != "" {
			note = request.Note
		}
		if err := uf.appendHistory(ctx, call.ID, actorID, models.CallHistoryActionUpsellAccepted, note); err != nil {
			return nil, err
		}

		return uf.toResult(call), nil
	})
}

// DeclineUpsell records a refused pitch and completes the call on the
// original order. Prices and revenue are left untouched.
func (uf *UpsellFlowImpl) DeclineUpsell(ctx context.Context, callID, actorID uint, request *dto.DeclineUpsellRequest, metadata *ClientMetadata) (*dto.UpsellResultDTO, error) {
	return uf.WithUpsellTransaction(ctx, func(ctx context.Context) (*dto.UpsellResultDTO, error) {
		call, err := uf.loadInProgressCall(ctx, callID)
		if err != nil {
			return nil, err
		}
		if !call.CanTransitionTo(models.CallStatusCompleted) {
			return nil, transitionError(call.Status, models.CallStatusCompleted)
		}

		now := utils.UTCNow()
		call.Status = models.CallStatusCompleted
		if call.CallStartedAt != nil && call.CallEndedAt == nil {
			call.CallEndedAt = &now
			call.CallDuration = boundDuration(call.CallStartedAt, now)
		}

		if err := uf.callRepo.Update(ctx, call); err != nil {
			return nil, err
		}

		note := "declined"
		if request != nil && request.Note != "" {
			note = request.Note
		}
		if err := uf.appendHistory(ctx, call.ID, actorID, models.CallHistoryActionUpsellDeclined, note); err != nil {
			return nil, err
		}

		return uf.toResult(call), nil
	})
}

// Private helper methods

func (uf *UpsellFlowImpl) loadInProgressCall(ctx context.Context, callID uint) (*models.Call, error) {
	call, err := uf.callRepo.ByID(ctx, callID)
	if err != nil {
		return nil, err
	}
	if call == nil {
		return nil, ErrCallNotFound
	}
	if call.Status != models.CallStatusInProgress {
		return nil, ErrCallNotInProgress
	}
	return call, nil
}

// resolvePrice looks the SKU up in the product catalog unless the agent
// supplied a manual override.
func (uf *UpsellFlowImpl) resolvePrice(ctx context.Context, sku string, override *string) (decimal.Decimal, error) {
	if override != nil && *override != "" {
		price, err := decimal.NewFromString(*override)
		if err != nil || price.IsNegative() {
			return decimal.Zero, NewBusinessError("UPSELL_VALIDATION_FAILED", "Invalid override price", err)
		}
		return price, nil
	}

	product, err := uf.productRepo.BySKU(ctx, sku)
	if err != nil {
		return decimal.Zero, err
	}
	if product == nil {
		return decimal.Zero, ErrProductNotFound
	}
	if !utils.IsTrue(product.IsActive) {
		return decimal.Zero, ErrProductInactive
	}
	return product.Price, nil
}

func (uf *UpsellFlowImpl) appendHistory(ctx context.Context, callID, actorID uint, action, note string) error {
	entry := &models.CallHistory{
		CallID: callID,
		Action: action,
	}
	if note != "" {
		entry.Note = &note
	}
	if actorID != 0 {
		entry.AgentID = &actorID
	}
	return uf.historyRepo.Save(ctx, entry)
}

func (uf *UpsellFlowImpl) toResult(call *models.Call) *dto.UpsellResultDTO {
	out := &dto.UpsellResultDTO{
		Call:     ToCallDTO(*call),
		Revenue:  call.Revenue.StringFixed(2),
		IsUpsell: utils.IsTrue(call.IsUpsell),
	}
	if call.OriginalOrderSKU != nil {
		out.OriginalOrderSKU = *call.OriginalOrderSKU
	}
	if call.OriginalPrice != nil {
		out.OriginalPrice = call.OriginalPrice.StringFixed(2)
	}
	if call.NewOrderSKU != nil {
		out.NewOrderSKU = *call.NewOrderSKU
	}
	if call.NewPrice != nil {
		out.NewPrice = call.NewPrice.StringFixed(2)
	}
	return out
}

func (uf *UpsellFlowImpl) WithUpsellTransaction(ctx context.Context, fn func(context.Context) (*dto.UpsellResultDTO, error)) (*dto.UpsellResultDTO, error) {
	var result *dto.UpsellResultDTO
	var fnErr error

	err := repository.WithTransaction(ctx, uf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}
