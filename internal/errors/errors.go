package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingToken is returned when the Authorization header is absent or not a bearer token.
	ErrMissingToken = errors.New("missing or malformed bearer token")
	// ErrInvalidToken is returned when a token fails signature, structure or expiry checks,
	// or when its subject no longer resolves to a user.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidCredentials is returned when username/email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountInactive is returned when a deactivated user tries to authenticate.
	ErrAccountInactive = errors.New("account is not active")

	// ErrForbidden is returned when the caller is neither the owner nor an admin.
	ErrForbidden = errors.New("permission denied")
	// ErrAdminRequired is returned when an operation needs the admin role.
	ErrAdminRequired = errors.New("admin access required")

	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound is returned when an order is not found or not owned by the caller.
	ErrOrderNotFound = errors.New("order not found")

	// ErrEmailTaken is returned when the email belongs to another user.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrUsernameTaken is returned when the username belongs to another user.
	ErrUsernameTaken = errors.New("username is already taken")
	// ErrEmptyOrder is returned when an order has no items.
	ErrEmptyOrder = errors.New("order must contain at least one item")
	// ErrUnknownProduct is returned when an order item references a missing or deleted product.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrInvalidQuantity is returned when an item quantity is below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrInvalidPrice is returned when a price is negative or has more than two decimal places.
	ErrInvalidPrice = errors.New("price must be non-negative with at most 2 decimal places")
	// ErrInvalidStock is returned when a stock count is negative.
	ErrInvalidStock = errors.New("stock must not be negative")
	// ErrInvalidCategory is returned when a product references a missing category.
	ErrInvalidCategory = errors.New("category does not exist")
	// ErrInvalidStatus is returned for an unknown product status.
	ErrInvalidStatus = errors.New("invalid product status")
	// ErrInvalidRole is returned for an unknown user role.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidName is returned when a required name is blank.
	ErrInvalidName = errors.New("name must not be empty")
	// ErrInvalidUsername is returned when a username is blank or too long.
	ErrInvalidUsername = errors.New("username must be 1 to 100 characters")
	// ErrAdminNotDeletable is returned when trying to delete an admin user.
	ErrAdminNotDeletable = errors.New("admin users cannot be deleted")
	// ErrProductDeleted is returned when mutating a soft-deleted product.
	ErrProductDeleted = errors.New("product has been deleted")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

type mapping struct {
	target error
	status int
	code   string
}

var mappings = []mapping{
	{ErrMissingToken, http.StatusUnauthorized, "MISSING_TOKEN"},
	{ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrAccountInactive, http.StatusUnauthorized, "ACCOUNT_INACTIVE"},

	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrAdminRequired, http.StatusForbidden, "ADMIN_REQUIRED"},

	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{ErrOrderNotFound, http.StatusNotFound, "ORDER_NOT_FOUND"},

	{ErrEmailTaken, http.StatusBadRequest, "EMAIL_TAKEN"},
	{ErrUsernameTaken, http.StatusBadRequest, "USERNAME_TAKEN"},
	{ErrEmptyOrder, http.StatusBadRequest, "EMPTY_ORDER"},
	{ErrUnknownProduct, http.StatusBadRequest, "UNKNOWN_PRODUCT"},
	{ErrInvalidQuantity, http.StatusBadRequest, "INVALID_QUANTITY"},
	{ErrInvalidPrice, http.StatusBadRequest, "INVALID_PRICE"},
	{ErrInvalidStock, http.StatusBadRequest, "INVALID_STOCK"},
	{ErrInvalidCategory, http.StatusBadRequest, "INVALID_CATEGORY"},
	{ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{ErrInvalidRole, http.StatusBadRequest, "INVALID_ROLE"},
	{ErrInvalidName, http.StatusBadRequest, "INVALID_NAME"},
	{ErrInvalidUsername, http.StatusBadRequest, "INVALID_USERNAME"},
	{ErrAdminNotDeletable, http.StatusBadRequest, "ADMIN_NOT_DELETABLE"},
	{ErrProductDeleted, http.StatusBadRequest, "PRODUCT_DELETED"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors report only
// their class message, so wrapped detail stays in logs; anything unknown
// becomes a 500 with a generic message.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return NewHTTPError(m.status, m.target.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
