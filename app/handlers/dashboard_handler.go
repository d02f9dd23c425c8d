// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	businessflow "github.com/sepehr-hosseini/simorgh-crm/business_flow"
)

// DashboardHandlerInterface defines the contract for dashboard handlers
type DashboardHandlerInterface interface {
	DailyStats(c fiber.Ctx) error
	AgentPerformance(c fiber.Ctx) error
	ExportAgentPerformance(c fiber.Ctx) error
}

// DashboardHandler handles analytics HTTP requests
type DashboardHandler struct {
	dashboardFlow businessflow.DashboardFlow
	validator     *validator.Validate
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardFlow businessflow.DashboardFlow) *DashboardHandler {
	return &DashboardHandler{
		dashboardFlow: dashboardFlow,
		validator:     validator.New(),
	}
}

// DailyStats returns aggregated call metrics for a date window
// @Summary Dashboard Stats
// @Description Aggregate call counts, upsells, conversion rate, revenue, status breakdown, and the trailing revenue trend
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Window start (YYYY-MM-DD), defaults to today"
// @Param end_date query string false "Window end (YYYY-MM-DD), defaults to today"
// @Param agent_id query int false "Restrict to one agent"
// @Success 200 {object} dto.APIResponse{data=dto.DashboardStatsResponse} "Stats computed"
// @Failure 400 {object} dto.APIResponse "Invalid window"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/dashboard/stats [get]
func (h *DashboardHandler) DailyStats(c fiber.Ctx) error {
	var req dto.DashboardStatsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if validationErrors := validateStruct(h.validator, &req); validationErrors != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	stats, err := h.dashboardFlow.DailyStats(createRequestContext(c, "/api/v1/dashboard/stats"), &req)
	if err != nil {
		if businessflow.IsStartDateAfterEndDate(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Start date must not be after end date", "INVALID_DATE_RANGE", nil)
		}
		if businessflow.IsBusinessError(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid stats window", "INVALID_STATS_WINDOW", err.Error())
		}

		log.Println("Dashboard stats failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to compute dashboard stats", "DASHBOARD_STATS_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Dashboard stats computed", stats)
}

// AgentPerformance returns the per-agent leaderboard
// @Summary Agent Performance
// @Description Per-agent call counts, upsells closed, conversion rate, revenue, and average handling time
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AgentPerformanceResponse} "Performance computed"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/dashboard/agent-performance [get]
func (h *DashboardHandler) AgentPerformance(c fiber.Ctx) error {
	result, err := h.dashboardFlow.AgentPerformance(createRequestContext(c, "/api/v1/dashboard/agent-performance"))
	if err != nil {
		log.Println("Agent performance failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to compute agent performance", "AGENT_PERFORMANCE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Agent performance computed", result)
}

// ExportAgentPerformance streams the leaderboard as an Excel workbook
// @Summary Export Agent Performance
// @Description Download the agent performance leaderboard as an .xlsx file
// @Tags Dashboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary "Excel workbook"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/dashboard/agent-performance/export [get]
func (h *DashboardHandler) ExportAgentPerformance(c fiber.Ctx) error {
	filename, content, err := h.dashboardFlow.DownloadAgentPerformanceExcel(createRequestContext(c, "/api/v1/dashboard/agent-performance/export"))
	if err != nil {
		log.Println("Agent performance export failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to export agent performance", "AGENT_PERFORMANCE_EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(content)
}
