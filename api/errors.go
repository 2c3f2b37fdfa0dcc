package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/tasktree/ids"
	"github.com/xiaoyuanzhu-com/tasktree/log"
	"github.com/xiaoyuanzhu-com/tasktree/tasks"
	"github.com/xiaoyuanzhu-com/tasktree/workinfo"
)

// respondStoreError maps task store errors onto status codes
func respondStoreError(c *gin.Context, err error) {
	var vErr *tasks.ValidationError
	switch {
	case errors.As(err, &vErr):
		RespondValidationError(c, err.Error(), []ErrorDetail{{Field: vErr.Field, Message: vErr.Message}})
	case errors.Is(err, ids.ErrInvalidTaskID), errors.Is(err, ids.ErrInvalidWorkID):
		RespondValidationError(c, err.Error(), nil)
	case errors.Is(err, tasks.ErrDuplicateTaskID):
		RespondConflict(c, err.Error())
	case errors.Is(err, tasks.ErrPathNotFound),
		errors.Is(err, tasks.ErrTaskNotFound),
		errors.Is(err, workinfo.ErrWorkNotFound):
		RespondNotFound(c, err.Error())
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unexpected task store error")
		_ = c.Error(err)
		RespondInternalError(c, "internal error")
	}
}
