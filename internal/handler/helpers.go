package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docchat/docchat/internal/pkg/errcode"
	"github.com/docchat/docchat/internal/pkg/errs"
	"github.com/docchat/docchat/internal/pkg/response"
)

func badRequest(c *gin.Context, message string) {
	response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, message)
}

func handleError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case errs.IsInvalid(err):
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, err.Error())
	case errs.IsNotFound(err):
		response.Error(c, http.StatusNotFound, errcode.ErrNotFound, "not found")
	case errs.IsUnavailable(err):
		response.Error(c, http.StatusBadGateway, errcode.ErrEmbedUnavailable, "upstream unavailable")
	case errs.IsExtraction(err):
		response.Error(c, http.StatusUnprocessableEntity, errcode.ErrNoTextFound, err.Error())
	default:
		logutil.GetLogger(c.Request.Context()).Error("request failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
	}
}
