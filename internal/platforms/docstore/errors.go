package docstore

import (
	"errors"
	"fmt"
	"net/http"
)

// Document-store specific errors.
var (
	// ErrFolderNotFound indicates the folder does not exist.
	ErrFolderNotFound = errors.New("doc store: folder not found")
)

// APIError represents a document-store API error response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("doc store: API error %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsNotFound checks if the error indicates a missing folder.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return errors.Is(err, ErrFolderNotFound)
}
