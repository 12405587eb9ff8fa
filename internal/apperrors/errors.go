package apperrors

// This package defines the closed set of application fault categories.
// Services and clients return a typed *Error instead of ad-hoc error values,
// which keeps them decoupled from HTTP concerns. The API layer uses
// `errors.As()` to recognize these errors and map each category to a stable
// status code and JSON body; anything that is not an *Error is treated as an
// unclassified server fault.

// Category identifies one of the application's fault categories.
// The set is closed: the API layer's mapping over it is total.
type Category int

const (
	// Database signifies a fault in the persistence layer.
	// Mapped to a 500 Internal Server Error HTTP status.
	Database Category = iota

	// Authentication signifies missing or invalid credentials.
	// Mapped to a 401 Unauthorized HTTP status.
	Authentication

	// Validation signifies that input data provided by a client failed
	// business rule validation.
	// Mapped to a 422 Unprocessable Entity HTTP status.
	Validation

	// ExternalService signifies a failure in a downstream dependency.
	// Mapped to a 503 Service Unavailable HTTP status.
	ExternalService
)

// String returns the category label used in error response bodies.
// These labels are a compatibility contract for clients.
func (c Category) String() string {
	switch c {
	case Database:
		return "Database error"
	case Authentication:
		return "Authentication error"
	case Validation:
		return "Validation error"
	case ExternalService:
		return "External service error"
	default:
		return "Server error"
	}
}

// Error is a typed application fault carrying a human-readable message and
// an optional structured details mapping. Service is set only for the
// ExternalService category and names the failing dependency.
type Error struct {
	Category Category
	Message  string
	Service  string
	Details  map[string]any
}

func (e *Error) Error() string {
	if e.Category == ExternalService && e.Service != "" {
		return e.Service + ": " + e.Message
	}
	return e.Message
}

// NewDatabase creates a Database category error.
func NewDatabase(message string, details map[string]any) *Error {
	return &Error{Category: Database, Message: message, Details: details}
}

// NewAuthentication creates an Authentication category error.
func NewAuthentication(message string, details map[string]any) *Error {
	return &Error{Category: Authentication, Message: message, Details: details}
}

// NewValidation creates a Validation category error.
func NewValidation(message string, details map[string]any) *Error {
	return &Error{Category: Validation, Message: message, Details: details}
}

// NewExternalService creates an ExternalService category error naming the
// failing dependency.
func NewExternalService(service, message string, details map[string]any) *Error {
	return &Error{Category: ExternalService, Message: message, Service: service, Details: details}
}
