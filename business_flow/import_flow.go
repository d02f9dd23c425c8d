package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	"github.com/sepehr-hosseini/simorgh-crm/models"
	"github.com/sepehr-hosseini/simorgh-crm/repository"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportFlow handles bulk call intake from CSV and XLSX uploads
type ImportFlow interface {
	ImportCalls(ctx context.Context, filename string, data []byte, metadata *ClientMetadata) (*dto.ImportResultDTO, error)
}

// ImportFlowImpl implements the bulk import business flow
type ImportFlowImpl struct {
	callRepo repository.CallRepository
	userRepo repository.UserRepository
	db       *gorm.DB
}

// NewImportFlow creates a new import flow instance
func NewImportFlow(
	callRepo repository.CallRepository,
	userRepo repository.UserRepository,
	db *gorm.DB,
) ImportFlow {
	return &ImportFlowImpl{
		callRepo: callRepo,
		userRepo: userRepo,
		db:       db,
	}
}

// importColumns maps normalized header names to canonical fields
var importColumns = map[string]string{
	"date":         "date",
	"calldate":     "date",
	"day":          "date",
	"name":         "name",
	"customer":     "name",
	"customername": "name",
	"phone":        "phone",
	"phonenumber":  "phone",
	"mobile":       "phone",
	"tel":          "phone",
	"order":        "sku",
	"ordersku":     "sku",
	"sku":          "sku",
	"product":      "sku",
	"productsku":   "sku",
	"qty":          "qty",
	"quantity":     "qty",
	"count":        "qty",
	"price":        "price",
	"currentprice": "price",
	"amount":       "price",
	"shipping":     "shipping",
	"shippingfee":  "shipping",
	"deliveryfee":  "shipping",
	"address":      "address",
	"awb":          "awb",
	"tracking":     "awb",
	"trackingno":   "awb",
	"remarks":      "remarks",
	"notes":        "remarks",
}

// importedRow is one raw data row keyed by canonical field name
type importedRow map[string]string

// ImportCalls parses the upload, validates each row, runs the duplicate guard
// (against the database and against rows admitted earlier in the same batch),
// and spreads the imported calls over the active agents round-robin. Bad rows
// are collected and reported; the batch never aborts on a single row.
func (imf *ImportFlowImpl) ImportCalls(ctx context.Context, filename string, data []byte, metadata *ClientMetadata) (*dto.ImportResultDTO, error) {
	rows, err := parseImportFile(filename, data)
	if err != nil {
		return nil, NewBusinessError("IMPORT_PARSE_FAILED", "Failed to parse import file", err)
	}
	if len(rows) < 2 {
		return nil, NewBusinessError("IMPORT_EMPTY", "Import file contains no data rows", ErrEmptyImportFile)
	}

	columns, err := resolveHeader(rows[0])
	if err != nil {
		return nil, NewBusinessError("IMPORT_HEADER_INVALID", "Import file header is invalid", err)
	}

	agents, err := imf.userRepo.ListActiveAgents(ctx)
	if err != nil {
		return nil, NewBusinessError("IMPORT_FAILED", "Failed to load agents", err)
	}

	result := &dto.ImportResultDTO{TotalRows: len(rows) - 1}
	seen := make(map[string]bool) // phone + calendar day admitted earlier in this batch
	cursor := 0

	err = repository.WithTransaction(ctx, imf.db, func(ctx context.Context) error {
		for i, raw := range rows[1:] {
			rowNum := i + 1 // 1-based over data rows, header excluded

			row := pickColumns(raw, columns)
			call, reason := buildImportedCall(row)
			if reason != "" {
				result.Errors = append(result.Errors, dto.ImportRowErrorDTO{Row: rowNum, Reason: reason, RawRow: raw})
				continue
			}

			dayKey := call.Phone + "|" + call.CallDate.Format("2006-01-02")
			if seen[dayKey] {
				result.Duplicates++
				continue
			}
			existing, err := imf.callRepo.FindDuplicate(ctx, call.Phone, call.CallDate)
			if err != nil {
				return err
			}
			if existing != nil {
				result.Duplicates++
				seen[dayKey] = true
				continue
			}

			if len(agents) > 0 {
				agentID := agents[cursor%len(agents)].ID
				call.AgentID = &agentID
				cursor++
			}

			if err := imf.callRepo.Save(ctx, call); err != nil {
				return err
			}
			seen[dayKey] = true
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("IMPORT_FAILED", "Import failed", err)
	}

	return result, nil
}

// parseImportFile turns the upload into rows of cells, dispatching on the
// file extension.
func parseImportFile(filename string, data []byte) ([][]string, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		reader := csv.NewReader(bytes.NewReader(data))
		reader.FieldsPerRecord = -1
		var rows [][]string
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			rows = append(rows, record)
		}
		return rows, nil
	case strings.HasSuffix(lower, ".xlsx"):
		xl, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = xl.Close() }()
		sheets := xl.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyImportFile
		}
		return xl.GetRows(sheets[0])
	default:
		return nil, ErrUnsupportedImportFormat
	}
}

// resolveHeader maps each column index to a canonical field name. Name,
// phone, and order SKU columns are mandatory.
func resolveHeader(header []string) (map[int]string, error) {
	columns := make(map[int]string, len(header))
	for i, cell := range header {
		key := normalizeHeader(cell)
		if field, ok := importColumns[key]; ok {
			columns[i] = field
		}
	}

	required := []string{"name", "phone", "sku"}
	for _, field := range required {
		found := false
		for _, mapped := range columns {
			if mapped == field {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrMissingImportColumns, field)
		}
	}
	return columns, nil
}

// normalizeHeader lowercases a header cell and strips separators so that
// "Phone Number", "phone_number" and "PHONE-NUMBER" all match.
func normalizeHeader(cell string) string {
	cell = strings.ToLower(strings.TrimSpace(cell))
	replacer := strings.NewReplacer(" ", "", "_", "", "-", "", ".", "")
	return replacer.Replace(cell)
}

func pickColumns(raw []string, columns map[int]string) importedRow {
	row := make(importedRow, len(columns))
	for i, field := range columns {
		if i < len(raw) {
			row[field] = strings.TrimSpace(raw[i])
		}
	}
	return row
}

// buildImportedCall validates one row and constructs the call record for it.
// The returned reason is empty when the row is acceptable.
func buildImportedCall(row importedRow) (*models.Call, string) {
	if row["name"] == "" {
		return nil, "customer name is required"
	}
	if row["phone"] == "" {
		return nil, "phone number is required"
	}
	if row["sku"] == "" {
		return nil, "order SKU is required"
	}

	callDate, err := parseCallDate(row["date"])
	if err != nil {
		return nil, fmt.Sprintf("invalid date %q", row["date"])
	}

	call := &models.Call{
		UUID:         uuid.New(),
		CallDate:     callDate,
		CustomerName: row["name"],
		Phone:        row["phone"],
		Quantity:     1,
		Status:       models.CallStatusNew,
		CallType:     models.CallTypeConfirmation,
	}
	call.OrderSKU = optString(row["sku"])
	call.Address = optString(row["address"])
	call.AWB = optString(row["awb"])
	call.Remarks = optString(row["remarks"])

	if row["qty"] != "" {
		qty, err := strconv.Atoi(row["qty"])
		if err != nil || qty < 1 {
			return nil, fmt.Sprintf("invalid quantity %q", row["qty"])
		}
		call.Quantity = qty
	}
	if row["price"] != "" {
		price, err := decimal.NewFromString(row["price"])
		if err != nil || price.IsNegative() {
			return nil, fmt.Sprintf("invalid price %q", row["price"])
		}
		call.CurrentPrice = price
	}
	if row["shipping"] != "" {
		fee, err := decimal.NewFromString(row["shipping"])
		if err != nil || fee.IsNegative() {
			return nil, fmt.Sprintf("invalid shipping fee %q", row["shipping"])
		}
		call.ShippingFee = fee
	}

	return call, ""
}
