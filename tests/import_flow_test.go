// Package tests contains integration tests for the call lifecycle and analytics
package tests

import (
	"bytes"
	"context"
	"testing"

	businessflow "github.com/sepehr-hosseini/simorgh-crm/business_flow"
	"github.com/sepehr-hosseini/simorgh-crm/models"
	"github.com/sepehr-hosseini/simorgh-crm/repository"
	testingutil "github.com/sepehr-hosseini/simorgh-crm/testing"
	"github.com/sepehr-hosseini/simorgh-crm/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestImportFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		callRepo := repository.NewCallRepository(testDB.DB)
		userRepo := repository.NewUserRepository(testDB.DB)
		importFlow := businessflow.NewImportFlow(callRepo, userRepo, testDB.DB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
		ctx := context.Background()

		t.Run("CSVImportWithDuplicatesAndErrors", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			// Data row 2 repeats row 1's phone on the same day; data row 5 has no phone
			csvData := []byte("Date,Customer Name,Phone Number,Order SKU,Qty,Price\n" +
				"2026-02-03,Maryam Rahimi,+989111111111,GL-500,1,499.00\n" +
				"2026-02-03,Maryam Rahimi,+989111111111,GL-500,1,499.00\n" +
				"2026-02-03,Reza Karimi,+989222222222,GL-900,2,799.00\n" +
				"2026-02-04,Sara Ahmadi,+989333333333,VT-100,1,250.00\n" +
				"2026-02-03,No Phone,,GL-500,1,499.00\n")

			result, err := importFlow.ImportCalls(ctx, "calls.csv", csvData, metadata)
			require.NoError(t, err)
			assert.Equal(t, 5, result.TotalRows)
			assert.Equal(t, 3, result.Imported)
			assert.Equal(t, 1, result.Duplicates)
			require.Len(t, result.Errors, 1)
			// Row indexes count data rows only, 1-based
			assert.Equal(t, 5, result.Errors[0].Row)
			assert.Contains(t, result.Errors[0].Reason, "phone")
			// The raw cells ride along so the upload can be corrected
			require.Len(t, result.Errors[0].RawRow, 6)
			assert.Equal(t, "No Phone", result.Errors[0].RawRow[1])

			var count int64
			require.NoError(t, testDB.DB.Model(&models.Call{}).Count(&count).Error)
			assert.Equal(t, int64(3), count)
		})

		t.Run("RowsWithoutOrderSKUAreRejected", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			csvData := []byte("Date,Customer Name,Phone Number,Order SKU,Qty,Price\n" +
				"2026-02-03,Maryam Rahimi,+989111111111,GL-500,1,499.00\n" +
				"2026-02-04,Sara Ahmadi,+989333333333,,1,\n")

			result, err := importFlow.ImportCalls(ctx, "calls.csv", csvData, metadata)
			require.NoError(t, err)
			assert.Equal(t, 1, result.Imported)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, 2, result.Errors[0].Row)
			assert.Contains(t, result.Errors[0].Reason, "order SKU")

			var count int64
			require.NoError(t, testDB.DB.Model(&models.Call{}).Count(&count).Error)
			assert.Equal(t, int64(1), count)
		})

		t.Run("DuplicateGuardAgainstExistingCalls", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := fixtures.CreateTestCall("+989444444444", utils.UTCNow(), models.CallStatusNew)
			require.NoError(t, err)

			today := utils.UTCNow().Format("2006-01-02")
			csvData := []byte("date,name,phone,sku\n" +
				today + ",Existing Customer,+989444444444,GL-500\n")

			result, err := importFlow.ImportCalls(ctx, "calls.csv", csvData, metadata)
			require.NoError(t, err)
			assert.Equal(t, 0, result.Imported)
			assert.Equal(t, 1, result.Duplicates)
		})

		t.Run("RoundRobinAgentAssignment", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			first, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			second, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			_, err = fixtures.CreateInactiveAgent()
			require.NoError(t, err)

			csvData := []byte("date,name,phone,sku\n" +
				"2026-02-03,Customer One,+989511111111,GL-500\n" +
				"2026-02-03,Customer Two,+989522222222,GL-500\n" +
				"2026-02-03,Customer Three,+989533333333,GL-900\n" +
				"2026-02-03,Customer Four,+989544444444,GL-900\n")

			result, err := importFlow.ImportCalls(ctx, "calls.csv", csvData, metadata)
			require.NoError(t, err)
			assert.Equal(t, 4, result.Imported)

			var calls []*models.Call
			require.NoError(t, testDB.DB.Order("id ASC").Find(&calls).Error)
			require.Len(t, calls, 4)
			for i, call := range calls {
				require.NotNil(t, call.AgentID, "imported call %d must be assigned", i)
			}
			assert.Equal(t, first.ID, *calls[0].AgentID)
			assert.Equal(t, second.ID, *calls[1].AgentID)
			assert.Equal(t, first.ID, *calls[2].AgentID)
			assert.Equal(t, second.ID, *calls[3].AgentID)
		})

		t.Run("XLSXImport", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			xl := excelize.NewFile()
			sheet := xl.GetSheetName(0)
			require.NoError(t, xl.SetSheetRow(sheet, "A1", &[]string{"Date", "Name", "Phone", "SKU", "Price"}))
			require.NoError(t, xl.SetSheetRow(sheet, "A2", &[]string{"2026-02-03", "Maryam Rahimi", "+989611111111", "GL-500", "499.00"}))
			require.NoError(t, xl.SetSheetRow(sheet, "A3", &[]string{"2026-02-03", "Reza Karimi", "+989622222222", "GL-900", "799.00"}))

			var buf bytes.Buffer
			require.NoError(t, xl.Write(&buf))
			require.NoError(t, xl.Close())

			result, err := importFlow.ImportCalls(ctx, "calls.xlsx", buf.Bytes(), metadata)
			require.NoError(t, err)
			assert.Equal(t, 2, result.Imported)
			assert.Equal(t, 0, result.Duplicates)
			assert.Empty(t, result.Errors)

			var call models.Call
			require.NoError(t, testDB.DB.Where("phone = ?", "+989611111111").Last(&call).Error)
			require.NotNil(t, call.OrderSKU)
			assert.Equal(t, "GL-500", *call.OrderSKU)
			assert.Equal(t, "499", call.CurrentPrice.String())
		})

		t.Run("UnsupportedFormat", func(t *testing.T) {
			_, err := importFlow.ImportCalls(ctx, "calls.txt", []byte("whatever"), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsUnsupportedImportFormat(err))
		})

		t.Run("EmptyFile", func(t *testing.T) {
			_, err := importFlow.ImportCalls(ctx, "calls.csv", []byte("date,name,phone\n"), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsEmptyImportFile(err))
		})

		t.Run("MissingRequiredColumns", func(t *testing.T) {
			csvData := []byte("date,name,sku\n2026-02-03,Maryam Rahimi,GL-500\n")
			_, err := importFlow.ImportCalls(ctx, "calls.csv", csvData, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsMissingImportColumns(err))

			csvData = []byte("date,name,phone\n2026-02-03,Maryam Rahimi,+989111111111\n")
			_, err = importFlow.ImportCalls(ctx, "calls.csv", csvData, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsMissingImportColumns(err))
		})

		return nil
	})
	require.NoError(t, err)
}
