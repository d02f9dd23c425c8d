// Package tests contains integration tests for the call lifecycle and analytics
package tests

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	businessflow "github.com/sepehr-hosseini/simorgh-crm/business_flow"
	"github.com/sepehr-hosseini/simorgh-crm/config"
	"github.com/sepehr-hosseini/simorgh-crm/models"
	"github.com/sepehr-hosseini/simorgh-crm/repository"
	testingutil "github.com/sepehr-hosseini/simorgh-crm/testing"
	"github.com/sepehr-hosseini/simorgh-crm/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		callRepo := repository.NewCallRepository(testDB.DB)
		cacheConfig := &config.CacheConfig{RedisPrefix: "simorgh_test:"}
		// nil Redis client: the flow must work uncached
		dashboardFlow := businessflow.NewDashboardFlow(callRepo, nil, cacheConfig)
		ctx := context.Background()

		// markUpsold stamps a call as a closed upsell with the given revenue
		markUpsold := func(t *testing.T, callID uint, revenue string) {
			amount, err := decimal.NewFromString(revenue)
			require.NoError(t, err)
			err = testDB.DB.Model(&models.Call{}).Where("id = ?", callID).
				Updates(map[string]any{"is_upsell": true, "revenue": amount}).Error
			require.NoError(t, err)
		}

		t.Run("DailyStatsAggregates", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			var calls []*models.Call
			for i := 0; i < 10; i++ {
				call, err := fixtures.CreateTestCall(testingutil.RandomPhone(), utils.UTCNow(), models.CallStatusNew)
				require.NoError(t, err)
				calls = append(calls, call)
			}
			markUpsold(t, calls[0].ID, "100.00")
			markUpsold(t, calls[1].ID, "150.00")
			markUpsold(t, calls[2].ID, "50.00")

			stats, err := dashboardFlow.DailyStats(ctx, &dto.DashboardStatsRequest{})
			require.NoError(t, err)
			assert.Equal(t, int64(10), stats.TotalCalls)
			assert.Equal(t, int64(3), stats.UpsellsClosed)
			assert.Equal(t, "30.00", stats.ConversionRate)
			assert.Equal(t, "300.00", stats.TotalRevenue)
			assert.Equal(t, int64(10), stats.StatusBreakdown[string(models.CallStatusNew)])

			// Dense trailing series, zero-filled, ending today
			require.Len(t, stats.RevenueTrend, utils.RevenueTrendDays)
			today := utils.UTCNow().Format("2006-01-02")
			last := stats.RevenueTrend[len(stats.RevenueTrend)-1]
			assert.Equal(t, today, last.Day)
			assert.Equal(t, "300.00", last.Revenue)
			for _, point := range stats.RevenueTrend[:len(stats.RevenueTrend)-1] {
				assert.Equal(t, "0.00", point.Revenue)
			}
		})

		t.Run("DailyStatsZeroGuard", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			stats, err := dashboardFlow.DailyStats(ctx, &dto.DashboardStatsRequest{})
			require.NoError(t, err)
			assert.Equal(t, int64(0), stats.TotalCalls)
			assert.Equal(t, "0.00", stats.ConversionRate)
			assert.Equal(t, "0.00", stats.TotalRevenue)
			assert.Len(t, stats.RevenueTrend, utils.RevenueTrendDays)
		})

		t.Run("DailyStatsAgentScope", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			other, err := fixtures.CreateTestAgent()
			require.NoError(t, err)

			mine, err := fixtures.CreateTestCall(testingutil.RandomPhone(), utils.UTCNow(), models.CallStatusNew)
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(&models.Call{}).Where("id = ?", mine.ID).
				Update("agent_id", agent.ID).Error)

			theirs, err := fixtures.CreateTestCall(testingutil.RandomPhone(), utils.UTCNow(), models.CallStatusNew)
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(&models.Call{}).Where("id = ?", theirs.ID).
				Update("agent_id", other.ID).Error)

			stats, err := dashboardFlow.DailyStats(ctx, &dto.DashboardStatsRequest{AgentID: &agent.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(1), stats.TotalCalls)
		})

		t.Run("DailyStatsInvalidWindow", func(t *testing.T) {
			_, err := dashboardFlow.DailyStats(ctx, &dto.DashboardStatsRequest{
				StartDate: utils.ToPtr("2026-02-28"),
				EndDate:   utils.ToPtr("2026-02-01"),
			})
			require.Error(t, err)
		})

		t.Run("AgentPerformanceLeaderboard", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			busy, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			idle, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			_, err = fixtures.CreateInactiveAgent()
			require.NoError(t, err)

			started := utils.UTCNow().Add(-30 * time.Minute)
			ended := started.Add(6 * time.Minute)
			for i := 0; i < 4; i++ {
				call, err := fixtures.CreateTestCall(testingutil.RandomPhone(), utils.UTCNow(), models.CallStatusCompleted)
				require.NoError(t, err)
				require.NoError(t, testDB.DB.Model(&models.Call{}).Where("id = ?", call.ID).
					Updates(map[string]any{
						"agent_id":        busy.ID,
						"call_started_at": started,
						"call_ended_at":   ended,
					}).Error)
				if i < 2 {
					markUpsold(t, call.ID, "200.00")
				}
			}

			perf, err := dashboardFlow.AgentPerformance(ctx)
			require.NoError(t, err)
			// Inactive agents never appear on the leaderboard
			require.Len(t, perf.Agents, 2)

			top := perf.Agents[0]
			assert.Equal(t, busy.ID, top.AgentID)
			assert.Equal(t, busy.Username, top.Username)
			assert.Equal(t, int64(4), top.CallsHandled)
			assert.Equal(t, int64(2), top.UpsellsClosed)
			assert.Equal(t, "50.00", top.ConversionRate)
			assert.Equal(t, "400.00", top.TotalRevenue)
			// Handling time is reported in minutes: four 6-minute calls
			assert.Equal(t, "6.00", top.AvgHandlingMinutes)

			bottom := perf.Agents[1]
			assert.Equal(t, idle.ID, bottom.AgentID)
			assert.Equal(t, int64(0), bottom.CallsHandled)
			assert.Equal(t, "0.00", bottom.ConversionRate)
			assert.Equal(t, "0.00", bottom.AvgHandlingMinutes)
		})

		t.Run("AgentPerformanceExcelExport", func(t *testing.T) {
			filename, content, err := dashboardFlow.DownloadAgentPerformanceExcel(ctx)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(filename, "agent_performance_"))
			assert.True(t, strings.HasSuffix(filename, ".xlsx"))
			assert.NotEmpty(t, content)
		})

		return nil
	})
	require.NoError(t, err)
}
