package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/lintang-b-s/tm-search/pkg/util"

	"github.com/cockroachdb/errors"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MAX_BODY_BYTES caps request bodies; importTmx uploads whole files.
const MAX_BODY_BYTES = 256 << 20

// writeJSON marshals data structure to encoded JSON response.
func (api *tmAPI) writeJSON(w http.ResponseWriter, status int, data interface{},
	headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}

	js = append(js, '\n')
	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(js); err != nil {
		api.log.Error("failed to write JSON response", zap.Error(err))
		return err
	}

	return nil
}

// readJSON decodes the body into dst and validates it.
func (api *tmAPI) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MAX_BODY_BYTES)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return util.WrapErrorf(err, util.ErrBadParamInput, "invalid request body")
	}
	if err := api.validate.Struct(dst); err != nil {
		return util.WrapErrorf(errors.Newf("%v", translateError(err, api.trans)), util.ErrBadParamInput, "validation error")
	}
	return nil
}

func translateError(err error, trans ut.Translator) (errs []string) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []string{err.Error()}
	}
	for _, e := range validatorErrs {
		errs = append(errs, e.Translate(trans))
	}
	return errs
}
