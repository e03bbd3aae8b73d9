package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to HTTP status codes via errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrUnavailable         = errors.New("unavailable")
)

// Error is a domain error with a caller-facing message and a kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is match an *Error against its kind as well as itself.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrInvalidTradeType = newError(ErrValidation, "Type must be 'buy' or 'sell'")
	ErrInvalidAmount    = newError(ErrValidation, "Amount must be greater than zero")
	ErrInvalidRole      = newError(ErrValidation, "Role must be 'employer' or 'employee'")
	ErrInvalidStyle     = newError(ErrValidation, "Invalid travel style")
	ErrCompanyNotReady  = newError(ErrValidation, "Company not found or not yet approved")
	ErrMissingLogin     = newError(ErrValidation, "Username, password, and role required")
	ErrEmptyCompanies   = newError(ErrValidation, "Companies list is empty or invalid")
	ErrInvalidCompany   = newError(ErrValidation, "Company name is required and credits cannot be negative")
	ErrInvalidEmployer  = newError(ErrValidation, "Invalid employer ID")
	ErrInvalidDistance  = newError(ErrValidation, "Missing required travel data")
	ErrCreditsMismatch  = newError(ErrValidation, "carbonCreditsEarned does not match distance and travel style")
	ErrWeakPassword     = newError(ErrValidation, "Password must be at least 8 characters and contain a letter and a number")

	ErrTradeNotFound    = newError(ErrNotFound, "Trade not found")
	ErrRequestNotFound  = newError(ErrNotFound, "Request not found")
	ErrCompanyNotFound  = newError(ErrNotFound, "Company not found")
	ErrUserNotFound     = newError(ErrNotFound, "User not found")
	ErrAdminNotFound    = newError(ErrNotFound, "Admin not found")
	ErrLoginNotFound    = newError(ErrNotFound, "User not found or wrong company")
	ErrEmployeeNotFound = newError(ErrNotFound, "Employee not found or already approved")

	ErrInvalidPassword = newError(ErrUnauthenticated, "Invalid password")
	ErrInvalidToken    = newError(ErrUnauthenticated, "Invalid token")

	ErrNotTradeOwner      = newError(ErrForbidden, "Only the trade owner can perform this action")
	ErrLogsForbidden      = newError(ErrForbidden, "You cannot view this user's travel logs")
	ErrCompanyNotApproved = newError(ErrForbidden, "Company not approved by admin.")
	ErrAccountNotApproved = newError(ErrForbidden, "Your account is not approved yet")
	ErrAdminRegistration  = newError(ErrForbidden, "Admin registration not allowed")
	ErrUsersForbidden     = newError(ErrForbidden, "Access denied")
	ErrNoCompany          = newError(ErrForbidden, "User is not associated with any company")

	ErrSelfFulfillment     = newError(ErrConflict, "You cannot fulfill your own trade")
	ErrDuplicateRequest    = newError(ErrConflict, "You have already requested to fulfill this trade")
	ErrTradeNotOpen        = newError(ErrConflict, "Trade is no longer open for requests")
	ErrTradeAlreadySettled = newError(ErrConflict, "Trade has already been settled")
	ErrCompanyExists       = newError(ErrConflict, "Company already exists")
	ErrUsernameTaken       = newError(ErrConflict, "Username already exists")

	ErrInsufficientSellerCredits = newError(ErrInsufficientCredits, "Seller lacks sufficient credits")

	ErrDistanceUnavailable = newError(ErrUnavailable, "Distance calculation is not configured")
)

// InsufficientCreditsToSell reports how many credits the advertiser can still sell.
func InsufficientCreditsToSell(available int64) error {
	return newError(ErrInsufficientCredits, fmt.Sprintf("Insufficient credits to sell. Available: %d", available))
}
