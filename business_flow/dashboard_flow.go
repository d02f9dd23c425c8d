package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	"github.com/sepehr-hosseini/simorgh-crm/config"
	"github.com/sepehr-hosseini/simorgh-crm/repository"
	"github.com/sepehr-hosseini/simorgh-crm/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DashboardFlow aggregates call and upsell figures for the dashboard
type DashboardFlow interface {
	DailyStats(ctx context.Context, request *dto.DashboardStatsRequest) (*dto.DashboardStatsResponse, error)
	AgentPerformance(ctx context.Context) (*dto.AgentPerformanceResponse, error)
	DownloadAgentPerformanceExcel(ctx context.Context) (string, []byte, error)
}

// DashboardFlowImpl implements the dashboard business flow
type DashboardFlowImpl struct {
	callRepo    repository.CallRepository
	rc          *redis.Client
	cacheConfig *config.CacheConfig
}

// NewDashboardFlow creates a new dashboard flow instance
func NewDashboardFlow(
	callRepo repository.CallRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) DashboardFlow {
	return &DashboardFlowImpl{
		callRepo:    callRepo,
		rc:          rc,
		cacheConfig: cacheConfig,
	}
}

// DailyStats computes call counts and revenue aggregates for a date window
// (default: today). Results are cached in Redis for a short TTL since the
// dashboard polls these figures.
func (df *DashboardFlowImpl) DailyStats(ctx context.Context, request *dto.DashboardStatsRequest) (*dto.DashboardStatsResponse, error) {
	from, to, err := statsWindow(request)
	if err != nil {
		return nil, NewBusinessError("STATS_VALIDATION_FAILED", "Invalid stats window", err)
	}

	cacheKey := df.statsCacheKey(from, to, request.AgentID)
	if df.rc != nil {
		if bs, err := df.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.DashboardStatsResponse
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	total, err := df.callRepo.CountInWindow(ctx, from, to, request.AgentID)
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to count calls", err)
	}
	upsells, err := df.callRepo.CountUpsellsInWindow(ctx, from, to, request.AgentID)
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to count upsells", err)
	}
	revenue, err := df.callRepo.SumRevenueInWindow(ctx, from, to, request.AgentID)
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to sum revenue", err)
	}
	statusCounts, err := df.callRepo.CountByStatus(ctx, from, to, request.AgentID)
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to group calls by status", err)
	}

	// Trailing revenue series ends at the window's last day. Both bounds are
	// midnight-aligned, so this spans exactly RevenueTrendDays buckets.
	trendFrom := to.AddDate(0, 0, -utils.RevenueTrendDays)
	dayRevenues, err := df.callRepo.RevenueByDay(ctx, trendFrom, to, request.AgentID)
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to build revenue trend", err)
	}

	out := &dto.DashboardStatsResponse{
		TotalCalls:      total,
		UpsellsClosed:   upsells,
		ConversionRate:  conversionRate(upsells, total),
		TotalRevenue:    revenue.StringFixed(2),
		StatusBreakdown: make(map[string]int64, len(statusCounts)),
		RevenueTrend:    fillRevenueTrend(trendFrom, to, dayRevenues),
		WindowStart:     from.Format(time.RFC3339),
		WindowEnd:       to.Format(time.RFC3339),
	}
	for _, sc := range statusCounts {
		out.StatusBreakdown[string(sc.Status)] = sc.Count
	}

	if df.rc != nil {
		if bs, err := json.Marshal(out); err == nil {
			_ = df.rc.Set(ctx, cacheKey, bs, utils.DashboardStatsCacheTTL).Err()
		}
	}

	return out, nil
}

// AgentPerformance returns the leaderboard across active agents, busiest first
func (df *DashboardFlowImpl) AgentPerformance(ctx context.Context) (*dto.AgentPerformanceResponse, error) {
	rows, err := df.callRepo.AgentPerformance(ctx)
	if err != nil {
		return nil, NewBusinessError("AGENT_PERFORMANCE_FAILED", "Failed to aggregate agent performance", err)
	}

	out := &dto.AgentPerformanceResponse{Agents: make([]dto.AgentPerformanceDTO, 0, len(rows))}
	for _, row := range rows {
		out.Agents = append(out.Agents, dto.AgentPerformanceDTO{
			AgentID:            row.AgentID,
			Username:           row.Username,
			CallsHandled:       row.CallsHandled,
			UpsellsClosed:      row.UpsellsClosed,
			ConversionRate:     conversionRate(row.UpsellsClosed, row.CallsHandled),
			TotalRevenue:       row.TotalRevenue.StringFixed(2),
			AvgHandlingMinutes: avgHandlingMinutes(row.AvgHandlingSeconds),
		})
	}
	return out, nil
}

// DownloadAgentPerformanceExcel renders the leaderboard as a spreadsheet
func (df *DashboardFlowImpl) DownloadAgentPerformanceExcel(ctx context.Context) (string, []byte, error) {
	perf, err := df.AgentPerformance(ctx)
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Agent Performance"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"agent_id", "username", "calls_handled", "upsells_closed", "conversion_rate", "total_revenue", "avg_handling_minutes"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, agent := range perf.Agents {
		record := []string{
			strconv.FormatUint(uint64(agent.AgentID), 10),
			agent.Username,
			strconv.FormatInt(agent.CallsHandled, 10),
			strconv.FormatInt(agent.UpsellsClosed, 10),
			agent.ConversionRate,
			agent.TotalRevenue,
			agent.AvgHandlingMinutes,
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := fmt.Sprintf("agent_performance_%s.xlsx", utils.UTCNow().Format("2006-01-02"))
	return filename, buf.Bytes(), nil
}

// Private helper methods

// statsWindow resolves the requested date range; both bounds default to today.
func statsWindow(request *dto.DashboardStatsRequest) (time.Time, time.Time, error) {
	now := utils.UTCNow()
	startDay, endDay := now, now

	if request.StartDate != nil && *request.StartDate != "" {
		parsed, err := parseCallDate(*request.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		startDay = parsed
	}
	if request.EndDate != nil && *request.EndDate != "" {
		parsed, err := parseCallDate(*request.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		endDay = parsed
	}

	from, _ := utils.DayBounds(startDay)
	_, to := utils.DayBounds(endDay)
	if from.After(to) {
		return time.Time{}, time.Time{}, ErrStartDateAfterEndDate
	}
	return from, to, nil
}

// conversionRate computes upsells/calls as a percentage, rounded half-up to
// two decimals. No calls means a flat zero, never a division error.
func conversionRate(upsells, calls int64) string {
	if calls == 0 {
		return decimal.Zero.StringFixed(utils.PercentScale)
	}
	rate := decimal.NewFromInt(upsells).
		Div(decimal.NewFromInt(calls)).
		Mul(decimal.NewFromInt(100)).
		Round(utils.PercentScale)
	return rate.StringFixed(utils.PercentScale)
}

// avgHandlingMinutes converts the SQL-side mean of (ended - started), which
// arrives in seconds, into minutes rounded half-up to two decimals.
func avgHandlingMinutes(seconds float64) string {
	return decimal.NewFromFloat(seconds).
		Div(decimal.NewFromInt(60)).
		Round(2).
		StringFixed(2)
}

// fillRevenueTrend expands the sparse SQL day buckets into a dense series,
// zero-filling days without calls.
func fillRevenueTrend(from, to time.Time, rows []repository.DayRevenue) []dto.RevenuePoint {
	byDay := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		byDay[row.Day.UTC().Format("2006-01-02")] = row.Revenue
	}

	points := make([]dto.RevenuePoint, 0, utils.RevenueTrendDays)
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		revenue := decimal.Zero
		if r, ok := byDay[key]; ok {
			revenue = r
		}
		points = append(points, dto.RevenuePoint{Day: key, Revenue: revenue.StringFixed(2)})
	}
	return points
}

func (df *DashboardFlowImpl) statsCacheKey(from, to time.Time, agentID *uint) string {
	agent := "all"
	if agentID != nil {
		agent = strconv.FormatUint(uint64(*agentID), 10)
	}
	return redisKey(*df.cacheConfig, fmt.Sprintf("%s:%s:%s:%s",
		utils.DashboardStatsCacheKey, from.Format("2006-01-02"), to.Format("2006-01-02"), agent))
}

// redisKey namespaces a cache key with the configured prefix
func redisKey(cfg config.CacheConfig, key string) string {
	return cfg.RedisPrefix + key
}
