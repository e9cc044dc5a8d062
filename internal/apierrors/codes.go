// Package apierrors provides structured API error codes and responses.
// All codes are namespaced (e.g., "core:unauthorized", "approval:comment_required").
package apierrors

import "net/http"

// Core error codes, registered at init.
const (
	// Authentication & Authorization
	CodeUnauthorized = "core:unauthorized"
	CodeForbidden    = "core:forbidden"
	CodeInvalidToken = "core:invalid_token"
	CodeTokenExpired = "core:token_expired"

	// Request errors
	CodeInvalidRequest   = "core:invalid_request"
	CodeValidationFailed = "core:validation_failed"
	CodeInvalidID        = "core:invalid_id"

	// Resource errors
	CodeNotFound = "core:not_found"
	CodeConflict = "core:conflict"

	// Rate limiting
	CodeRateLimited = "core:rate_limited"

	// Server errors
	CodeInternalError      = "core:internal_error"
	CodeServiceUnavailable = "core:service_unavailable"
)

// Approval workflow error codes.
const (
	CodeApprovalNotFound        = "approval:not_found"
	CodeInvalidTransition       = "approval:invalid_transition"
	CodeCommentRequired         = "approval:comment_required"
	CodeVersionConflict         = "approval:conflict"
	CodeSweepInProgress         = "approval:sweep_in_progress"
	CodeRequestCancelled        = "approval:request_cancelled"
	CodeUnknownAction           = "approval:unknown_action"
	CodeTemplateWithoutApproval = "approval:template_without_chain"
)

var coreErrors = []ErrorCode{
	{Code: CodeUnauthorized, Message: "Authentication required", HTTPStatus: http.StatusUnauthorized},
	{Code: CodeForbidden, Message: "Permission denied", HTTPStatus: http.StatusForbidden},
	{Code: CodeInvalidToken, Message: "Invalid or malformed token", HTTPStatus: http.StatusUnauthorized},
	{Code: CodeTokenExpired, Message: "Token has expired", HTTPStatus: http.StatusUnauthorized},

	{Code: CodeInvalidRequest, Message: "Invalid request body", HTTPStatus: http.StatusBadRequest},
	{Code: CodeValidationFailed, Message: "Request validation failed", HTTPStatus: http.StatusBadRequest},
	{Code: CodeInvalidID, Message: "Invalid ID format", HTTPStatus: http.StatusBadRequest},

	{Code: CodeNotFound, Message: "Resource not found", HTTPStatus: http.StatusNotFound},
	{Code: CodeConflict, Message: "Resource conflict", HTTPStatus: http.StatusConflict},

	{Code: CodeRateLimited, Message: "Too many requests", HTTPStatus: http.StatusTooManyRequests},

	{Code: CodeInternalError, Message: "Internal server error", HTTPStatus: http.StatusInternalServerError},
	{Code: CodeServiceUnavailable, Message: "Service temporarily unavailable", HTTPStatus: http.StatusServiceUnavailable},
}

var approvalErrors = []ErrorCode{
	{Code: CodeApprovalNotFound, Message: "Approval record not found", HTTPStatus: http.StatusNotFound},
	{Code: CodeInvalidTransition, Message: "Approval already decided", HTTPStatus: http.StatusConflict},
	{Code: CodeCommentRequired, Message: "A comment is required for this action", HTTPStatus: http.StatusBadRequest},
	{Code: CodeVersionConflict, Message: "Approval was modified concurrently, retry", HTTPStatus: http.StatusConflict},
	{Code: CodeSweepInProgress, Message: "Auto-approval sweep already running for this request", HTTPStatus: http.StatusConflict},
	{Code: CodeRequestCancelled, Message: "Request has been cancelled", HTTPStatus: http.StatusConflict},
	{Code: CodeUnknownAction, Message: "Unknown approval action", HTTPStatus: http.StatusBadRequest},
	{Code: CodeTemplateWithoutApproval, Message: "Template has no approval chain", HTTPStatus: http.StatusBadRequest},
}

func init() {
	for _, e := range coreErrors {
		Registry.Register(e)
	}
	for _, e := range approvalErrors {
		Registry.Register(e)
	}
}
