// Package testing provides test utilities and database setup for integration tests
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sepehr-hosseini/simorgh-crm/models"
	"github.com/sepehr-hosseini/simorgh-crm/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates a user with the given role and a known password ("TestPass123!")
func (tf *TestFixtures) CreateTestUser(role models.UserRole) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		UUID:         uuid.New(),
		Username:     fmt.Sprintf("%s_%d_%d", role, time.Now().UnixNano(), rand.Intn(10000)),
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestAgent creates an active agent user
func (tf *TestFixtures) CreateTestAgent() (*models.User, error) {
	return tf.CreateTestUser(models.UserRoleAgent)
}

// CreateTestAdmin creates an active admin user
func (tf *TestFixtures) CreateTestAdmin() (*models.User, error) {
	return tf.CreateTestUser(models.UserRoleAdmin)
}

// CreateInactiveAgent creates an agent that must be skipped by assignment logic
func (tf *TestFixtures) CreateInactiveAgent() (*models.User, error) {
	agent, err := tf.CreateTestAgent()
	if err != nil {
		return nil, err
	}

	agent.IsActive = utils.ToPtr(false)
	if err := tf.DB.DB.Save(agent).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate test agent: %w", err)
	}

	return agent, nil
}

// CreateTestProduct creates an active catalog product with the given SKU and price
func (tf *TestFixtures) CreateTestProduct(sku string, price string) (*models.Product, error) {
	parsedPrice, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid test product price %q: %w", price, err)
	}

	product := &models.Product{
		UUID:      uuid.New(),
		SKU:       sku,
		Name:      fmt.Sprintf("Product %s", sku),
		Price:     parsedPrice,
		UnitCount: 1,
		IsActive:  utils.ToPtr(true),
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create test product: %w", err)
	}

	return product, nil
}

// CreateTestCall creates a call in the given status for the given phone/date.
// Remaining fields get sensible defaults.
func (tf *TestFixtures) CreateTestCall(phone string, callDate time.Time, status models.CallStatus) (*models.Call, error) {
	call := &models.Call{
		UUID:         uuid.New(),
		CallDate:     callDate,
		CustomerName: "Test Customer",
		Phone:        phone,
		Quantity:     1,
		CurrentPrice: decimal.Zero,
		ShippingFee:  decimal.Zero,
		Status:       status,
		CallType:     models.CallTypeConfirmation,
		IsUpsell:     utils.ToPtr(false),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(call).Error; err != nil {
		return nil, fmt.Errorf("failed to create test call: %w", err)
	}

	return call, nil
}

// CreateTestCallWithOrder creates a call that already carries an order line
func (tf *TestFixtures) CreateTestCallWithOrder(phone string, callDate time.Time, sku string, price string) (*models.Call, error) {
	parsedPrice, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid test order price %q: %w", price, err)
	}

	call := &models.Call{
		UUID:         uuid.New(),
		CallDate:     callDate,
		CustomerName: "Test Customer",
		Phone:        phone,
		OrderSKU:     utils.ToPtr(sku),
		Quantity:     1,
		CurrentPrice: parsedPrice,
		ShippingFee:  decimal.Zero,
		Status:       models.CallStatusNew,
		CallType:     models.CallTypeConfirmation,
		IsUpsell:     utils.ToPtr(false),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(call).Error; err != nil {
		return nil, fmt.Errorf("failed to create test call with order: %w", err)
	}

	return call, nil
}

// RandomPhone returns a unique-looking Iranian mobile number for test records
func RandomPhone() string {
	return fmt.Sprintf("+989%09d", rand.Intn(900000000)+100000000)
}
