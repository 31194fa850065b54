package model

import "maps"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON           = "INVALID_JSON"
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeParentNotFound        = "PARENT_NOT_FOUND"
	ErrCodeCategoryNotFound      = "CATEGORY_NOT_FOUND"
	ErrCodeInvalidImagePlacement = "INVALID_IMAGE_PLACEMENT"
	ErrCodeCyclicParent          = "CYCLIC_PARENT"
	ErrCodeHasChildren           = "HAS_CHILDREN"
	ErrCodeNoChildren            = "NO_CHILDREN"
	ErrCodeUnknownCategories     = "UNKNOWN_CATEGORIES"
	ErrCodeNoValidCategories     = "NO_VALID_CATEGORIES"
	ErrCodeAlreadyLinked         = "ALREADY_LINKED"
	ErrCodeNotLinked             = "NOT_LINKED"
	ErrCodeUploadFailed          = "UPLOAD_FAILED"
	ErrCodeStoreUnavailable      = "STORE_UNAVAILABLE"
	ErrCodeUnauthenticated       = "UNAUTHENTICATED"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeConflict              = "CONFLICT"
	ErrCodeRateLimited           = "RATE_LIMITED"
	ErrCodeInternalError         = "INTERNAL_ERROR"
)

// DomainError is an error with a machine-readable code.
// Two DomainErrors match under errors.Is when their codes are equal.
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithMessage returns a copy of e carrying message.
func (e *DomainError) WithMessage(message string) *DomainError {
	c := *e
	c.Message = message
	return &c
}

// WithDetails returns a copy of e with details merged in.
func (e *DomainError) WithDetails(details map[string]any) *DomainError {
	c := *e
	c.Details = make(map[string]any, len(e.Details)+len(details))
	maps.Copy(c.Details, e.Details)
	maps.Copy(c.Details, details)
	return &c
}

// Wrap returns a copy of e caused by err.
func (e *DomainError) Wrap(err error) *DomainError {
	c := *e
	c.Err = err
	return &c
}

// Common domain errors
var (
	ErrInvalidJSON           = NewDomainError(ErrCodeInvalidJSON, "Request body is not valid JSON")
	ErrValidation            = NewDomainError(ErrCodeValidation, "Validation failed")
	ErrNotFound              = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrCategoryMissing       = NewDomainError(ErrCodeNotFound, "Category not found")
	ErrProductMissing        = NewDomainError(ErrCodeNotFound, "Product not found")
	ErrUserMissing           = NewDomainError(ErrCodeNotFound, "User not found")
	ErrParentNotFound        = NewDomainError(ErrCodeParentNotFound, "Parent category not found")
	ErrCategoryNotFound      = NewDomainError(ErrCodeCategoryNotFound, "Referenced category not found")
	ErrInvalidImagePlacement = NewDomainError(ErrCodeInvalidImagePlacement, "Images are only allowed on root categories")
	ErrCyclicParent          = NewDomainError(ErrCodeCyclicParent, "Category cannot become its own ancestor")
	ErrHasChildren           = NewDomainError(ErrCodeHasChildren, "Category has subcategories; use cascade to delete them")
	ErrNoChildren            = NewDomainError(ErrCodeNoChildren, "No subcategories found")
	ErrUnknownCategories     = NewDomainError(ErrCodeUnknownCategories, "One or more categories do not exist")
	ErrNoValidCategories     = NewDomainError(ErrCodeNoValidCategories, "None of the provided categories exist")
	ErrAlreadyLinked         = NewDomainError(ErrCodeAlreadyLinked, "Product already belongs to this category")
	ErrNotLinked             = NewDomainError(ErrCodeNotLinked, "Product does not belong to this category")
	ErrUploadFailed          = NewDomainError(ErrCodeUploadFailed, "Image upload failed")
	ErrStoreUnavailable      = NewDomainError(ErrCodeStoreUnavailable, "Record store unavailable")
	ErrUnauthenticated       = NewDomainError(ErrCodeUnauthenticated, "Authentication required")
	ErrForbidden             = NewDomainError(ErrCodeForbidden, "Operation not permitted")
	ErrConflict              = NewDomainError(ErrCodeConflict, "Resource already exists")
	ErrRateLimited           = NewDomainError(ErrCodeRateLimited, "Rate limit exceeded. Please try again later")
)
