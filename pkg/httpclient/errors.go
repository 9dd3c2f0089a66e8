package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/way-19/consulting19/pkg/errors"
)

// upstreamErrorBody accepts the error shapes we meet in practice: our own
// envelope ({"error":{"code","message"}}) and the flat OAuth/GoTrue style
// ({"error":"invalid_grant","error_description":...} or {"msg":...}).
type upstreamErrorBody struct {
	Error            json.RawMessage `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
}

func (b upstreamErrorBody) codeAndMessage() (code, message string, ok bool) {
	if len(b.Error) > 0 {
		var nested struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(b.Error, &nested) == nil && nested.Message != "" {
			return nested.Code, nested.Message, true
		}
		var flat string
		if json.Unmarshal(b.Error, &flat) == nil && flat != "" {
			code = flat
		}
	}
	for _, m := range []string{b.ErrorDescription, b.Message, b.Msg} {
		if m != "" {
			return code, m, true
		}
	}
	return code, "", code != ""
}

// ParseResponseError consumes and closes a non-2xx response and returns an
// AppError that keeps the upstream meaning.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var body upstreamErrorBody
	if json.Unmarshal(raw, &body) == nil {
		if code, msg, ok := body.codeAndMessage(); ok {
			if msg == "" {
				msg = code
			}
			return mapUpstreamError(resp.StatusCode, code, msg, serviceName)
		}
	}
	return mapUpstreamError(resp.StatusCode, "", string(raw), serviceName)
}

func mapUpstreamError(status int, code, message, serviceName string) error {
	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(serviceName, message)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(message)
	case status == http.StatusConflict:
		return apperrors.Conflict(message)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.Unauthorized(message)
	case status == http.StatusGone:
		return apperrors.Gone(message)
	case status == http.StatusTooManyRequests:
		return apperrors.RateLimited(message)
	case status >= 500:
		e := apperrors.ServiceUnavailable(fmt.Sprintf("%s is unavailable", serviceName))
		e.Err = fmt.Errorf("%w: %s status %d (%s): %s", apperrors.ErrServiceUnavail, serviceName, status, code, message)
		return e
	default:
		return &apperrors.AppError{Code: "UPSTREAM_ERROR", Message: message, Status: status}
	}
}

// IsClientError reports whether status is a 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}

// AsUpstreamError unwraps err to an *UpstreamError.
func AsUpstreamError(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	ok := errors.As(err, &ue)
	return ue, ok
}
