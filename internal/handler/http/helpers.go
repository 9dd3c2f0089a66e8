package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/way-19/consulting19/pkg/httputil"
	"github.com/way-19/consulting19/pkg/validator"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst. An empty body is accepted
// when allowEmpty is set and leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
	})
	return false
}

// decodeAndValidate decodes dst and runs its validate tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !decodeJSON(w, r, dst, false) {
		return false
	}
	if err := validator.Validate(dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}

func writeInvalidParam(w http.ResponseWriter, name, value string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: fmt.Sprintf("invalid %s: %s", name, value)},
	})
}
