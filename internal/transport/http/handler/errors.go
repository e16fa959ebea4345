package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"menus-api/internal/dto"
	"menus-api/internal/repo"
	"menus-api/internal/service"
	"menus-api/internal/transport/http/ez"
	resp "menus-api/internal/transport/http/response"
)

// fail service/repo 错误 → ez.AErr
func fail(err error) error {
	var ae *ez.AErr
	var fe dto.FieldErrors
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return ae
	case errors.As(err, &fe):
		return invalid(fe)
	case errors.Is(err, service.ErrNotFound):
		return ez.NotFound(err.Error())
	case errors.Is(err, repo.ErrNotTracked):
		return ez.NotFound("record not found")
	case errors.Is(err, service.ErrOrderTaken), errors.Is(err, service.ErrEmailTaken):
		return ez.Conflict(err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return ez.Unauthorized(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return &ez.AErr{Code: resp.CodeTimeout, Msg: "timeout", Err: err}
	default:
		return ez.Internal("internal error", err)
	}
}

func invalid(fe dto.FieldErrors) error {
	return ez.Invalid("validation failed", gin.H{"errors": fe})
}

// paramID 路径里的 :id，必须是正整数
func paramID(c *gin.Context) (uint, error) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || n == 0 {
		return 0, ez.BadRequest("invalid id")
	}
	return uint(n), nil
}
