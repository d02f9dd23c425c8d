// Package businessflow contains the core business logic and use cases for call center workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrAccountInactive   = errors.New("account is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrUsernameTaken     = errors.New("username already exists")
	ErrInvalidCaptcha    = errors.New("invalid captcha")
	ErrNotAnAgent        = errors.New("user is not an agent")

	// Call-related errors
	ErrCallNotFound         = errors.New("call not found")
	ErrDuplicateCall        = errors.New("a call for this phone already exists on this date")
	ErrInvalidTransition    = errors.New("invalid call status transition")
	ErrCallNotInProgress    = errors.New("call is not in progress")
	ErrCallAlreadyComplete  = errors.New("call is already completed")
	ErrCallNotStarted       = errors.New("call has not been started")
	ErrPhoneRequired        = errors.New("phone number is required")
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrAgentNotFound        = errors.New("agent not found")
	ErrAgentInactive        = errors.New("agent is inactive")
	ErrNoActiveAgents       = errors.New("no active agents available for assignment")

	// Upsell-related errors
	ErrProductNotFound  = errors.New("product not found")
	ErrProductInactive  = errors.New("product is inactive")
	ErrNoOriginalOrder  = errors.New("call has no original order to upsell from")
	ErrUpsellNotOffered = errors.New("no upsell has been offered on this call")

	// Import-related errors
	ErrEmptyImportFile         = errors.New("import file contains no data rows")
	ErrUnsupportedImportFormat = errors.New("unsupported import file format")
	ErrMissingImportColumns    = errors.New("import file is missing required columns")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// IsBusinessError reports whether err is (or wraps) a BusinessError.
func IsBusinessError(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsUsernameTaken(err error) bool {
	return errors.Is(err, ErrUsernameTaken)
}

func IsInvalidCaptcha(err error) bool {
	return errors.Is(err, ErrInvalidCaptcha)
}

func IsNotAnAgent(err error) bool {
	return errors.Is(err, ErrNotAnAgent)
}

func IsCallNotFound(err error) bool {
	return errors.Is(err, ErrCallNotFound)
}

func IsDuplicateCall(err error) bool {
	return errors.Is(err, ErrDuplicateCall)
}

func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

func IsCallNotInProgress(err error) bool {
	return errors.Is(err, ErrCallNotInProgress)
}

func IsCallAlreadyComplete(err error) bool {
	return errors.Is(err, ErrCallAlreadyComplete)
}

func IsCallNotStarted(err error) bool {
	return errors.Is(err, ErrCallNotStarted)
}

func IsPhoneRequired(err error) bool {
	return errors.Is(err, ErrPhoneRequired)
}

func IsCustomerNameRequired(err error) bool {
	return errors.Is(err, ErrCustomerNameRequired)
}

func IsAgentNotFound(err error) bool {
	return errors.Is(err, ErrAgentNotFound)
}

func IsAgentInactive(err error) bool {
	return errors.Is(err, ErrAgentInactive)
}

func IsNoActiveAgents(err error) bool {
	return errors.Is(err, ErrNoActiveAgents)
}

func IsProductNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}

func IsProductInactive(err error) bool {
	return errors.Is(err, ErrProductInactive)
}

func IsNoOriginalOrder(err error) bool {
	return errors.Is(err, ErrNoOriginalOrder)
}

func IsUpsellNotOffered(err error) bool {
	return errors.Is(err, ErrUpsellNotOffered)
}

func IsEmptyImportFile(err error) bool {
	return errors.Is(err, ErrEmptyImportFile)
}

func IsUnsupportedImportFormat(err error) bool {
	return errors.Is(err, ErrUnsupportedImportFormat)
}

func IsMissingImportColumns(err error) bool {
	return errors.Is(err, ErrMissingImportColumns)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}
