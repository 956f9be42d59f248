package apierr

import "net/http"

// --- Common ---

func InvalidRequestBody() *Error {
	return New(CodeInvalidRequestBody, http.StatusBadRequest, "Invalid request body")
}

func InternalError(cause error) *Error {
	return Wrap(CodeInternalError, http.StatusInternalServerError, "Internal server error", cause)
}

// --- Schema ---

func SchemaNotFound(name string) *Error {
	return New(CodeSchemaNotFound, http.StatusNotFound, "Schema "+name+" not found")
}

func ExportFailed(cause error) *Error {
	return Wrap(CodeExportFailed, http.StatusInternalServerError, "Failed to export schema", cause)
}

// --- Check ---

func FilesRequired() *Error {
	return New(CodeFilesRequired, http.StatusBadRequest, "At least one file is required")
}

func CheckFailed(cause error) *Error {
	return Wrap(CodeCheckFailed, http.StatusInternalServerError, "Check run failed", cause)
}
