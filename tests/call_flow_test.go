// Package tests contains integration tests for the call lifecycle and analytics
package tests

import (
	"context"
	"testing"

	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	businessflow "github.com/sepehr-hosseini/simorgh-crm/business_flow"
	"github.com/sepehr-hosseini/simorgh-crm/models"
	"github.com/sepehr-hosseini/simorgh-crm/repository"
	testingutil "github.com/sepehr-hosseini/simorgh-crm/testing"
	"github.com/sepehr-hosseini/simorgh-crm/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCallFlow(testDB *testingutil.TestDB) businessflow.CallFlow {
	callRepo := repository.NewCallRepository(testDB.DB)
	historyRepo := repository.NewCallHistoryRepository(testDB.DB)
	userRepo := repository.NewUserRepository(testDB.DB)
	return businessflow.NewCallFlow(callRepo, historyRepo, userRepo, testDB.DB)
}

func TestCallFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		callFlow := newTestCallFlow(testDB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
		ctx := context.Background()

		t.Run("CreateCall", func(t *testing.T) {
			req := &dto.CreateCallRequest{
				CallDate:     "2026-02-03",
				CustomerName: "Maryam Rahimi",
				Phone:        testingutil.RandomPhone(),
				OrderSKU:     "GL-500",
				CurrentPrice: "499.00",
				ShippingFee:  "45.00",
			}

			call, err := callFlow.CreateCall(ctx, req, metadata)
			require.NoError(t, err)
			require.NotNil(t, call)
			assert.Equal(t, string(models.CallStatusNew), call.Status)
			assert.Equal(t, "New", call.StatusLabel)
			assert.Equal(t, "499.00", call.CurrentPrice)
			assert.Equal(t, "45.00", call.ShippingFee)
			assert.Equal(t, 1, call.Quantity)
			assert.NotEmpty(t, call.UUID)
		})

		t.Run("DuplicateGuardSameDay", func(t *testing.T) {
			phone := testingutil.RandomPhone()
			req := &dto.CreateCallRequest{
				CallDate:     "2026-02-03",
				CustomerName: "Maryam Rahimi",
				Phone:        phone,
			}

			_, err := callFlow.CreateCall(ctx, req, metadata)
			require.NoError(t, err)

			_, err = callFlow.CreateCall(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsDuplicateCall(err))

			// Same phone on a different day is fine
			req.CallDate = "2026-02-04"
			_, err = callFlow.CreateCall(ctx, req, metadata)
			require.NoError(t, err)
		})

		t.Run("CheckDuplicate", func(t *testing.T) {
			phone := testingutil.RandomPhone()
			_, err := fixtures.CreateTestCall(phone, utils.UTCNow(), models.CallStatusNew)
			require.NoError(t, err)

			resp, err := callFlow.CheckDuplicate(ctx, &dto.DuplicateCheckRequest{Phone: phone})
			require.NoError(t, err)
			assert.True(t, resp.Duplicate)
			require.NotNil(t, resp.Call)
			assert.Equal(t, phone, resp.Call.Phone)

			clean, err := callFlow.CheckDuplicate(ctx, &dto.DuplicateCheckRequest{Phone: testingutil.RandomPhone()})
			require.NoError(t, err)
			assert.False(t, clean.Duplicate)
			assert.Nil(t, clean.Call)
		})

		t.Run("ValidationRejectsMissingFields", func(t *testing.T) {
			_, err := callFlow.CreateCall(ctx, &dto.CreateCallRequest{Phone: testingutil.RandomPhone()}, metadata)
			require.Error(t, err)

			_, err = callFlow.CreateCall(ctx, &dto.CreateCallRequest{CustomerName: "No Phone"}, metadata)
			require.Error(t, err)
		})

		t.Run("AnswerCallClaimsAndStartsTimer", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			created, err := fixtures.CreateTestCall(testingutil.RandomPhone(), utils.UTCNow(), models.CallStatusNew)
			require.NoError(t, err)

			call, err := callFlow.AnswerCall(ctx, created.ID, agent.ID, metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.CallStatusInProgress), call.Status)
			assert.NotEmpty(t, call.CallStartedAt)
			require.NotNil(t, call.AgentID)
			assert.Equal(t, agent.ID, *call.AgentID)

			detail, err := callFlow.GetCall(ctx, created.ID)
			require.NoError(t, err)
			require.Len(t, detail.History, 1)
			assert.Equal(t, models.CallHistoryActionStarted, detail.History[0].Action)
		})

		t.Run("EndCallWithoutOrderMarksCalled", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			created, err := fixtures.CreateTestCall(testingutil.RandomPhone(), utils.UTCNow(), models.CallStatusNew)
			require.NoError(t, err)

			_, err = callFlow.AnswerCall(ctx, created.ID, agent.ID, metadata)
			require.NoError(t, err)

			call, err := callFlow.EndCall(ctx, created.ID, agent.ID, &dto.EndCallRequest{Remarks: "no answer on offer"}, metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.CallStatusCalled), call.Status)
			assert.NotEmpty(t, call.CallEndedAt)
			require.NotNil(t, call.DurationSeconds)
			assert.GreaterOrEqual(t, *call.DurationSeconds, 0)

			// A called record may be re-dialed later
			redialed, err := callFlow.AnswerCall(ctx, created.ID, agent.ID, metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.CallStatusInProgress), redialed.Status)
			assert.Empty(t, redialed.CallEndedAt)
		})

		t.Run("EndCallWithOrderCompletes", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			created, err := fixtures.CreateTestCallWithOrder(testingutil.RandomPhone(), utils.UTCNow(), "GL-500", "499.00")
			require.NoError(t, err)

			_, err = callFlow.AnswerCall(ctx, created.ID, agent.ID, metadata)
			require.NoError(t, err)

			call, err := callFlow.EndCall(ctx, created.ID, agent.ID, nil, metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.CallStatusCompleted), call.Status)
			assert.Equal(t, "Purchased", call.StatusLabel)

			// Completed is terminal
			_, err = callFlow.AnswerCall(ctx, created.ID, agent.ID, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidTransition(err))
		})

		t.Run("EndCallRequiresInProgress", func(t *testing.T) {
			created, err := fixtures.CreateTestCall(testingutil.RandomPhone(), utils.UTCNow(), models.CallStatusNew)
			require.NoError(t, err)

			_, err = callFlow.EndCall(ctx, created.ID, 0, nil, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsCallNotInProgress(err))
		})

		t.Run("MarkUnattendedAndCallback", func(t *testing.T) {
			created, err := fixtures.CreateTestCall(testingutil.RandomPhone(), utils.UTCNow(), models.CallStatusNew)
			require.NoError(t, err)

			call, err := callFlow.MarkUnattended(ctx, created.ID, 0, nil, metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.CallStatusUnattended), call.Status)

			// unattended -> callback is not a valid move
			_, err = callFlow.MarkCallback(ctx, created.ID, 0, nil, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidTransition(err))

			other, err := fixtures.CreateTestCall(testingutil.RandomPhone(), utils.UTCNow(), models.CallStatusNew)
			require.NoError(t, err)
			flagged, err := callFlow.MarkCallback(ctx, other.ID, 0, &dto.CallbackRequest{Remarks: "call after 5pm"}, metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.CallStatusCallback), flagged.Status)
			assert.Equal(t, "call after 5pm", flagged.Remarks)
		})

		t.Run("MarkAsidePreservesOrder", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			created, err := fixtures.CreateTestCallWithOrder(testingutil.RandomPhone(), utils.UTCNow(), "GL-500", "499.00")
			require.NoError(t, err)

			_, err = callFlow.AnswerCall(ctx, created.ID, agent.ID, metadata)
			require.NoError(t, err)

			revenue, err := decimal.NewFromString("120.00")
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(&models.Call{}).Where("id = ?", created.ID).
				Updates(map[string]any{"is_upsell": true, "revenue": revenue}).Error)

			call, err := callFlow.MarkUnattended(ctx, created.ID, agent.ID, nil, metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.CallStatusUnattended), call.Status)
			assert.Equal(t, "GL-500", call.OrderSKU)
			assert.Equal(t, "499.00", call.CurrentPrice)
			assert.Equal(t, "120.00", call.Revenue)

			// Same preservation rule on the callback path
			other, err := fixtures.CreateTestCallWithOrder(testingutil.RandomPhone(), utils.UTCNow(), "GL-900", "799.00")
			require.NoError(t, err)
			_, err = callFlow.AnswerCall(ctx, other.ID, agent.ID, metadata)
			require.NoError(t, err)

			flagged, err := callFlow.MarkCallback(ctx, other.ID, agent.ID, nil, metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.CallStatusCallback), flagged.Status)
			assert.Equal(t, "GL-900", flagged.OrderSKU)
			assert.Equal(t, "799.00", flagged.CurrentPrice)
		})

		t.Run("ResetClearsTimerKeepsOrder", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			created, err := fixtures.CreateTestCallWithOrder(testingutil.RandomPhone(), utils.UTCNow(), "GL-500", "499.00")
			require.NoError(t, err)

			_, err = callFlow.AnswerCall(ctx, created.ID, agent.ID, metadata)
			require.NoError(t, err)

			call, err := callFlow.ResetCall(ctx, created.ID, agent.ID, metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.CallStatusNew), call.Status)
			assert.Empty(t, call.CallStartedAt)
			assert.Empty(t, call.CallEndedAt)
			assert.Nil(t, call.DurationSeconds)
			assert.Equal(t, "GL-500", call.OrderSKU)
			assert.Equal(t, "499.00", call.CurrentPrice)

			detail, err := callFlow.GetCall(ctx, created.ID)
			require.NoError(t, err)
			last := detail.History[len(detail.History)-1]
			assert.Equal(t, models.CallHistoryActionReset, last.Action)
			assert.Equal(t, "was in_progress", last.Note)
		})

		t.Run("AssignAgentValidation", func(t *testing.T) {
			created, err := fixtures.CreateTestCall(testingutil.RandomPhone(), utils.UTCNow(), models.CallStatusNew)
			require.NoError(t, err)

			_, err = callFlow.AssignAgent(ctx, created.ID, &dto.AssignAgentRequest{AgentID: 999999}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAgentNotFound(err))

			admin, err := fixtures.CreateTestAdmin()
			require.NoError(t, err)
			_, err = callFlow.AssignAgent(ctx, created.ID, &dto.AssignAgentRequest{AgentID: admin.ID}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsNotAnAgent(err))

			inactive, err := fixtures.CreateInactiveAgent()
			require.NoError(t, err)
			_, err = callFlow.AssignAgent(ctx, created.ID, &dto.AssignAgentRequest{AgentID: inactive.ID}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAgentInactive(err))

			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			call, err := callFlow.AssignAgent(ctx, created.ID, &dto.AssignAgentRequest{AgentID: agent.ID}, metadata)
			require.NoError(t, err)
			require.NotNil(t, call.AgentID)
			assert.Equal(t, agent.ID, *call.AgentID)
		})

		t.Run("UpdateCallPartialEdits", func(t *testing.T) {
			created, err := fixtures.CreateTestCall(testingutil.RandomPhone(), utils.UTCNow(), models.CallStatusNew)
			require.NoError(t, err)

			call, err := callFlow.UpdateCall(ctx, created.ID, &dto.UpdateCallRequest{
				AWB:         utils.ToPtr("IR-2026-009812"),
				Address:     utils.ToPtr("Tehran, Valiasr St."),
				ShippingFee: utils.ToPtr("60.00"),
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "IR-2026-009812", call.AWB)
			assert.Equal(t, "Tehran, Valiasr St.", call.Address)
			assert.Equal(t, "60.00", call.ShippingFee)
			// Untouched fields survive a partial update
			assert.Equal(t, created.CustomerName, call.CustomerName)

			_, err = callFlow.UpdateCall(ctx, created.ID, &dto.UpdateCallRequest{
				CustomerName: utils.ToPtr("   "),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsCustomerNameRequired(err))
		})

		t.Run("ListCallsFilterAndPagination", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			for i := 0; i < 5; i++ {
				_, err := fixtures.CreateTestCall(testingutil.RandomPhone(), utils.UTCNow(), models.CallStatusNew)
				require.NoError(t, err)
			}
			flagged, err := fixtures.CreateTestCall(testingutil.RandomPhone(), utils.UTCNow(), models.CallStatusNew)
			require.NoError(t, err)
			_, err = callFlow.MarkCallback(ctx, flagged.ID, 0, nil, metadata)
			require.NoError(t, err)

			all, err := callFlow.ListCalls(ctx, &dto.ListCallsRequest{})
			require.NoError(t, err)
			assert.Equal(t, int64(6), all.Pagination.TotalItems)

			callbacks, err := callFlow.ListCalls(ctx, &dto.ListCallsRequest{Status: utils.ToPtr("callback")})
			require.NoError(t, err)
			require.Len(t, callbacks.Calls, 1)
			assert.Equal(t, flagged.ID, callbacks.Calls[0].ID)

			paged, err := callFlow.ListCalls(ctx, &dto.ListCallsRequest{Page: 2, PageSize: 4})
			require.NoError(t, err)
			assert.Len(t, paged.Calls, 2)
			assert.Equal(t, 2, paged.Pagination.TotalPages)

			_, err = callFlow.ListCalls(ctx, &dto.ListCallsRequest{Status: utils.ToPtr("purchased")})
			require.Error(t, err)

			_, err = callFlow.ListCalls(ctx, &dto.ListCallsRequest{
				StartDate: utils.ToPtr("2026-02-28"),
				EndDate:   utils.ToPtr("2026-02-01"),
			})
			require.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}
