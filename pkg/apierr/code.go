package apierr

// Code is a machine-readable error code returned in API responses.
type Code string

// Common errors.
const (
	CodeInvalidRequestBody Code = "INVALID_REQUEST_BODY"
	CodeInternalError      Code = "INTERNAL_ERROR"
)

// Schema errors.
const (
	CodeSchemaNotFound Code = "SCHEMA_NOT_FOUND"
	CodeExportFailed   Code = "EXPORT_FAILED"
)

// Check errors.
const (
	CodeFilesRequired Code = "FILES_REQUIRED"
	CodeCheckFailed   Code = "CHECK_FAILED"
)
