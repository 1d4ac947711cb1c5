package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"

	"supashop-api/internal/model"
	"supashop-api/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.MessageResponse{Message: message})
}

// writeRaw sends bytes that are already JSON, such as a cached response.
func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := model.ErrorResponse{Code: "INTERNAL_ERROR", Message: "internal server error"}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrInvalidToken) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Forbidden"
	} else {
		slog.Error("unhandled error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
	}

	writeJSON(w, status, body)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest)
	}
	return nil
}

// skipParam reads the pagination offset. Missing or malformed values mean 0.
func skipParam(r *http.Request) int {
	skip, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("skip")))
	if err != nil || skip < 0 {
		return 0
	}
	return skip
}
