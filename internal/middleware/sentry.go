package middleware

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
)

// Sentry attaches a per-request hub so captured errors carry request data.
// Panics are re-raised for Recovery to answer.
func Sentry() func(http.Handler) http.Handler {
	handler := sentryhttp.New(sentryhttp.Options{Repanic: true})
	return handler.Handle
}
