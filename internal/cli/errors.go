// Package cli implements the command-line interface.
package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	ErrConfigInvalid = "CONFIG_INVALID"

	ErrDocumentNotFound  = "DOCUMENT_NOT_FOUND"
	ErrDocumentUnwritten = "DOCUMENT_WRITE_ERROR"

	ErrExhibitsRootNotFound = "EXHIBITS_ROOT_NOT_FOUND"
	ErrIndexBuildFailed     = "INDEX_BUILD_FAILED"

	ErrViewerInvalid = "VIEWER_INVALID"

	ErrRenameConflict = "RENAME_CONFLICT"
	ErrRenameFailed   = "RENAME_FAILED"

	ErrRunFailed = "RUN_FAILED"

	ErrDocsNotFound = "DOCS_NOT_FOUND"
)
