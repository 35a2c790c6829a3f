// Package errors provides standardized error handling for the HTTP surface
// and BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Client errors
const (
	ErrCodeMissingFile         ErrorCode = "MISSING_FILE"
	ErrCodeInvalidRequest      ErrorCode = "INVALID_REQUEST"
	ErrCodeFileTooLarge        ErrorCode = "FILE_TOO_LARGE"
	ErrCodeUnsupportedFileType ErrorCode = "UNSUPPORTED_FILE_TYPE"
	ErrCodeRateLimited         ErrorCode = "RATE_LIMITED"
)

// Extraction / server errors
const (
	ErrCodeExtractionYieldedNothing ErrorCode = "EXTRACTION_YIELDED_NOTHING"
	ErrCodeExtractionFailed         ErrorCode = "EXTRACTION_FAILED"
	ErrCodeCatalogInvalid           ErrorCode = "CATALOG_INVALID"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a metadata entry and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewMissingFileError creates a non-retryable error for a request without an upload.
func NewMissingFileError() *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingFile,
		Message:   "No resume uploaded. Send the file in the 'resume' form field.",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewFileTooLargeError(limit int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeFileTooLarge,
		Message:   fmt.Sprintf("Resume exceeds the %d MB upload limit", limit>>20),
		Details:   fmt.Sprintf("maxBytes: %d", limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnsupportedFileTypeError creates a non-retryable error for uploads that are neither PDF nor DOCX.
func NewUnsupportedFileTypeError(declared string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnsupportedFileType,
		Message:   "Unsupported file type. Upload a PDF or DOCX resume.",
		Details:   fmt.Sprintf("declared: %s", declared),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewRateLimitedError(retryAfter time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Too many resume uploads. Try again shortly.",
		Retryable: true,
		Metadata:  map[string]interface{}{"retryAfterSeconds": int(retryAfter.Seconds())},
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionYieldedNothingError signals that every extraction stage came back empty.
func NewExtractionYieldedNothingError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionYieldedNothing,
		Message:   "Could not read any text from the resume. Try a DOCX or a text-based PDF.",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionFailedError wraps an unrecoverable extraction fault.
func NewExtractionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Failed to extract text from the resume",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewCatalogInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Job catalog is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Error Conversion
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeMissingFile:              "RESUME_MISSING",
	ErrCodeInvalidRequest:           "INVALID_REQUEST",
	ErrCodeFileTooLarge:             "RESUME_TOO_LARGE",
	ErrCodeUnsupportedFileType:      "RESUME_UNSUPPORTED_TYPE",
	ErrCodeExtractionYieldedNothing: "RESUME_UNREADABLE",
	ErrCodeExtractionFailed:         "EXTRACTION_FAILED",
	ErrCodeInternal:                 "INTERNAL_ERROR",
}

// HTTPStatusMapping maps internal error codes to HTTP status codes.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeMissingFile:              http.StatusBadRequest,
	ErrCodeInvalidRequest:           http.StatusBadRequest,
	ErrCodeFileTooLarge:             http.StatusRequestEntityTooLarge,
	ErrCodeUnsupportedFileType:      http.StatusUnsupportedMediaType,
	ErrCodeExtractionYieldedNothing: http.StatusUnprocessableEntity,
	ErrCodeRateLimited:              http.StatusTooManyRequests,
	ErrCodeExtractionFailed:         http.StatusInternalServerError,
	ErrCodeCatalogInvalid:           http.StatusInternalServerError,
	ErrCodeInternal:                 http.StatusInternalServerError,
}

// GetRetryCount returns the recommended retry count for the workflow engine.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeExtractionFailed:
		return 1
	case ErrCodeInternal:
		return 2
	default:
		return 0 // Client errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		if _, reserved := vars[k]; !reserved {
			vars[k] = v
		}
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err to a StandardError, wrapping unknown errors as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HTTPStatus maps any error, wrapped or not, to an HTTP status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if status, ok := HTTPStatusMapping[AsStandardError(err).Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// IsClientError reports whether the code maps to a 4xx status.
func IsClientError(code ErrorCode) bool {
	status, ok := HTTPStatusMapping[code]
	return ok && status >= 400 && status < 500
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "EXTRACTION"):
		return "EXTRACTION"
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "RATE"):
		return "THROTTLING"
	case IsClientError(code):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
