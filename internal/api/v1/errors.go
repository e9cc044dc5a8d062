package v1

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/apierrors"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/approval"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/repository"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/template"
)

// respondDomainError translates workflow and storage errors into the
// registered API error codes. Unknown errors become a 500 and are logged by
// the caller.
func (router *APIRouter) respondDomainError(c *gin.Context, err error) {
	var verr *template.ValidationError

	switch {
	case errors.Is(err, approval.ErrCommentRequired):
		apierrors.Error(c, apierrors.CodeCommentRequired)
	case errors.Is(err, approval.ErrInvalidTransition):
		apierrors.Error(c, apierrors.CodeInvalidTransition)
	case errors.Is(err, approval.ErrSweepInProgress):
		apierrors.Error(c, apierrors.CodeSweepInProgress)
	case errors.Is(err, repository.ErrVersionConflict):
		apierrors.Error(c, apierrors.CodeVersionConflict)
	case errors.Is(err, repository.ErrNotFound):
		apierrors.Error(c, apierrors.CodeNotFound)
	case errors.Is(err, template.ErrTemplateNotFound):
		apierrors.ErrorWithMessage(c, apierrors.CodeNotFound, "Template not found")
	case errors.As(err, &verr):
		apierrors.ErrorWithMessage(c, apierrors.CodeValidationFailed, verr.Error())
	default:
		router.logger.Printf("internal error: %v", err)
		apierrors.Error(c, apierrors.CodeInternalError)
	}
}
