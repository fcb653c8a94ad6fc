package httpapi

import (
	"net/http"

	nativecommon "blendpool/native/common"
)

// ThrottleMiddleware rate-limits requests per authenticated subject, using
// the same token-bucket guard Submit callers share. It must run after
// Authenticator.Middleware so SubjectFromContext is populated.
func ThrottleMiddleware(throttle *nativecommon.SubmitThrottle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := SubjectFromContext(r.Context())
			if !throttle.Allow(subject) {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
