package controllers

import (
	"net/http"

	"github.com/lintang-b-s/tm-search/pkg/remote"
	"github.com/lintang-b-s/tm-search/pkg/util"

	"go.uber.org/zap"
)

func (api *tmAPI) failedResponse(w http.ResponseWriter, status int, code, reason string) {
	resp := remote.Response{Status: remote.STATUS_FAILED, Reason: reason, Code: code}
	if err := api.writeJSON(w, status, resp, nil); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (api *tmAPI) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.failedResponse(w, http.StatusBadRequest, remote.CODE_BAD_REQUEST, err.Error())
}

func (api *tmAPI) UnauthorizedResponse(w http.ResponseWriter, r *http.Request, reason string) {
	api.failedResponse(w, http.StatusUnauthorized, remote.CODE_UNAUTHORIZED, reason)
}

func (api *tmAPI) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.log.Error("error when serving request", zap.String("path", r.URL.Path), zap.Error(err))
	api.failedResponse(w, http.StatusInternalServerError, remote.CODE_INTERNAL, util.MessageInternalServerError+": "+err.Error())
}

// ErrorResponse picks the status and code from the error's classification.
func (api *tmAPI) ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch util.CodeOf(err) {
	case util.ErrNotFound:
		api.failedResponse(w, http.StatusNotFound, remote.CODE_NOT_FOUND, err.Error())
	case util.ErrBadParamInput:
		api.BadRequestResponse(w, r, err)
	case util.ErrUnauthorized:
		api.UnauthorizedResponse(w, r, err.Error())
	case util.ErrClosed:
		api.failedResponse(w, http.StatusGone, remote.CODE_CLOSED, err.Error())
	default:
		api.ServerErrorResponse(w, r, err)
	}
}
