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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsellFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		callRepo := repository.NewCallRepository(testDB.DB)
		historyRepo := repository.NewCallHistoryRepository(testDB.DB)
		productRepo := repository.NewProductRepository(testDB.DB)

		callFlow := newTestCallFlow(testDB)
		upsellFlow := businessflow.NewUpsellFlow(callRepo, productRepo, historyRepo, testDB.DB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
		ctx := context.Background()

		// startOrderedCall creates a call carrying an order and dials it
		startOrderedCall := func(t *testing.T, agentID uint, sku, price string) *models.Call {
			created, err := fixtures.CreateTestCallWithOrder(testingutil.RandomPhone(), utils.UTCNow(), sku, price)
			require.NoError(t, err)
			_, err = callFlow.AnswerCall(ctx, created.ID, agentID, metadata)
			require.NoError(t, err)
			return created
		}

		t.Run("ApplyUpsellComputesRevenue", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			_, err = fixtures.CreateTestProduct("GL-900", "800.00")
			require.NoError(t, err)

			call := startOrderedCall(t, agent.ID, "GL-500", "500.00")

			result, err := upsellFlow.ApplyUpsell(ctx, call.ID, agent.ID, &dto.ApplyUpsellRequest{
				NewOrderSKU: "GL-900",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "GL-500", result.OriginalOrderSKU)
			assert.Equal(t, "500.00", result.OriginalPrice)
			assert.Equal(t, "GL-900", result.NewOrderSKU)
			assert.Equal(t, "800.00", result.NewPrice)
			assert.Equal(t, "300.00", result.Revenue)
			assert.True(t, result.IsUpsell)
			assert.Equal(t, "GL-900", result.Call.OrderSKU)
			assert.Equal(t, "800.00", result.Call.CurrentPrice)
		})

		t.Run("SecondUpsellKeepsFirstBaseline", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)

			call := startOrderedCall(t, agent.ID, "VT-100", "250.00")

			first, err := upsellFlow.ApplyUpsell(ctx, call.ID, agent.ID, &dto.ApplyUpsellRequest{
				NewOrderSKU: "VT-200",
				NewPrice:    utils.ToPtr("400.00"),
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "150.00", first.Revenue)

			second, err := upsellFlow.ApplyUpsell(ctx, call.ID, agent.ID, &dto.ApplyUpsellRequest{
				NewOrderSKU: "VT-300",
				NewPrice:    utils.ToPtr("600.00"),
			}, metadata)
			require.NoError(t, err)
			// Baseline from the first upsell survives: 600 - 250, not 600 - 400
			assert.Equal(t, "VT-100", second.OriginalOrderSKU)
			assert.Equal(t, "250.00", second.OriginalPrice)
			assert.Equal(t, "350.00", second.Revenue)
		})

		t.Run("UpsellRequiresInProgressCall", func(t *testing.T) {
			created, err := fixtures.CreateTestCallWithOrder(testingutil.RandomPhone(), utils.UTCNow(), "GL-500", "500.00")
			require.NoError(t, err)

			_, err = upsellFlow.ApplyUpsell(ctx, created.ID, 0, &dto.ApplyUpsellRequest{
				NewOrderSKU: "GL-900",
				NewPrice:    utils.ToPtr("800.00"),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsCallNotInProgress(err))
		})

		t.Run("UpsellRequiresOriginalOrder", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			created, err := fixtures.CreateTestCall(testingutil.RandomPhone(), utils.UTCNow(), models.CallStatusNew)
			require.NoError(t, err)
			_, err = callFlow.AnswerCall(ctx, created.ID, agent.ID, metadata)
			require.NoError(t, err)

			_, err = upsellFlow.ApplyUpsell(ctx, created.ID, agent.ID, &dto.ApplyUpsellRequest{
				NewOrderSKU: "GL-900",
				NewPrice:    utils.ToPtr("800.00"),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsNoOriginalOrder(err))
		})

		t.Run("CatalogLookupRejectsUnknownAndInactive", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			call := startOrderedCall(t, agent.ID, "GL-500", "500.00")

			_, err = upsellFlow.ApplyUpsell(ctx, call.ID, agent.ID, &dto.ApplyUpsellRequest{
				NewOrderSKU: "NO-SUCH-SKU",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsProductNotFound(err))

			retired, err := fixtures.CreateTestProduct("RETIRED-1", "100.00")
			require.NoError(t, err)
			retired.IsActive = utils.ToPtr(false)
			require.NoError(t, testDB.DB.Save(retired).Error)

			_, err = upsellFlow.ApplyUpsell(ctx, call.ID, agent.ID, &dto.ApplyUpsellRequest{
				NewOrderSKU: "RETIRED-1",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsProductInactive(err))
		})

		t.Run("OfferRecordsHistoryOnly", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			call := startOrderedCall(t, agent.ID, "GL-500", "500.00")

			result, err := upsellFlow.OfferUpsell(ctx, call.ID, agent.ID, &dto.OfferUpsellRequest{
				NewOrderSKU: "GL-900",
			}, metadata)
			require.NoError(t, err)
			// Order fields untouched by a mere pitch
			assert.Equal(t, "GL-500", result.OrderSKU)
			assert.Equal(t, "500.00", result.CurrentPrice)
			assert.Equal(t, "0.00", result.Revenue)

			detail, err := callFlow.GetCall(ctx, call.ID)
			require.NoError(t, err)
			last := detail.History[len(detail.History)-1]
			assert.Equal(t, models.CallHistoryActionUpsellOffered, last.Action)
			assert.Equal(t, "offered GL-900", last.Note)
		})

		t.Run("DeclineCompletesOnOriginalOrder", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			call := startOrderedCall(t, agent.ID, "GL-500", "500.00")

			result, err := upsellFlow.DeclineUpsell(ctx, call.ID, agent.ID, &dto.DeclineUpsellRequest{
				Note: "not interested",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.CallStatusCompleted), result.Call.Status)
			assert.Equal(t, "GL-500", result.Call.OrderSKU)
			assert.Equal(t, "500.00", result.Call.CurrentPrice)
			assert.Equal(t, "0.00", result.Revenue)
			assert.False(t, result.IsUpsell)

			detail, err := callFlow.GetCall(ctx, call.ID)
			require.NoError(t, err)
			last := detail.History[len(detail.History)-1]
			assert.Equal(t, models.CallHistoryActionUpsellDeclined, last.Action)
			assert.Equal(t, "not interested", last.Note)
		})

		return nil
	})
	require.NoError(t, err)
}
