// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"io"
	"log"

	"github.com/gofiber/fiber/v3"
	businessflow "github.com/sepehr-hosseini/simorgh-crm/business_flow"
)

// maxImportFileSize caps uploaded spreadsheets at 10MB. A day's worth of
// leads is a few thousand rows; anything bigger is a wrong file.
const maxImportFileSize = 10 << 20

// ImportHandlerInterface defines the contract for bulk import handlers
type ImportHandlerInterface interface {
	ImportCalls(c fiber.Ctx) error
}

// ImportHandler handles bulk call import HTTP requests
type ImportHandler struct {
	importFlow businessflow.ImportFlow
}

// NewImportHandler creates a new import handler
func NewImportHandler(importFlow businessflow.ImportFlow) *ImportHandler {
	return &ImportHandler{importFlow: importFlow}
}

// ImportCalls ingests a CSV or Excel lead sheet
// @Summary Import Calls
// @Description Bulk import calls from a CSV or .xlsx file, skipping duplicates and reporting row errors
// @Tags Calls
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Lead sheet (.csv or .xlsx, <=10MB)"
// @Success 200 {object} dto.APIResponse{data=dto.ImportResultDTO} "Import completed"
// @Failure 400 {object} dto.APIResponse "Invalid or empty file"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/calls/import [post]
func (h *ImportHandler) ImportCalls(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader == nil {
		return errorResponse(c, fiber.StatusBadRequest, "file is required", "INVALID_FILE", nil)
	}
	if fileHeader.Size > maxImportFileSize {
		return errorResponse(c, fiber.StatusBadRequest, "File too large", "FILE_TOO_LARGE", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid file", "INVALID_FILE", err.Error())
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "failed to read file", "INVALID_FILE", err.Error())
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.importFlow.ImportCalls(createRequestContext(c, "/api/v1/calls/import"), fileHeader.Filename, data, metadata)
	if err != nil {
		switch {
		case businessflow.IsEmptyImportFile(err):
			return errorResponse(c, fiber.StatusBadRequest, "Import file contains no data rows", "IMPORT_EMPTY", nil)
		case businessflow.IsUnsupportedImportFormat(err):
			return errorResponse(c, fiber.StatusBadRequest, "Only .csv and .xlsx files are supported", "UNSUPPORTED_FORMAT", nil)
		case businessflow.IsMissingImportColumns(err):
			return errorResponse(c, fiber.StatusBadRequest, "Import file is missing required columns", "MISSING_COLUMNS", err.Error())
		case businessflow.IsNoActiveAgents(err):
			return errorResponse(c, fiber.StatusBadRequest, "No active agents available for assignment", "NO_ACTIVE_AGENTS", nil)
		case businessflow.IsBusinessError(err):
			return errorResponse(c, fiber.StatusBadRequest, "Import failed", "IMPORT_FAILED", err.Error())
		}

		log.Println("Call import failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Call import failed", "IMPORT_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Import completed", result)
}
