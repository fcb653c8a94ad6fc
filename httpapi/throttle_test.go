package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	nativecommon "blendpool/native/common"
)

func withSubject(req *http.Request, subject string) *http.Request {
	ctx := context.WithValue(req.Context(), subjectContextKey, subject)
	return req.WithContext(ctx)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestThrottleMiddlewareAllowsWithinBurst(t *testing.T) {
	throttle := nativecommon.NewSubmitThrottle(1, 2)
	handler := ThrottleMiddleware(throttle)(okHandler())

	for i := 0; i < 2; i++ {
		req := withSubject(httptest.NewRequest(http.MethodPost, "/", nil), "alice")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}
}

func TestThrottleMiddlewareRejectsOverBurst(t *testing.T) {
	throttle := nativecommon.NewSubmitThrottle(0.001, 1)
	handler := ThrottleMiddleware(throttle)(okHandler())

	first := withSubject(httptest.NewRequest(http.MethodPost, "/", nil), "alice")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want %d", rec.Code, http.StatusOK)
	}

	second := withSubject(httptest.NewRequest(http.MethodPost, "/", nil), "alice")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
}

func TestThrottleMiddlewareTracksSubjectsIndependently(t *testing.T) {
	throttle := nativecommon.NewSubmitThrottle(0.001, 1)
	handler := ThrottleMiddleware(throttle)(okHandler())

	aliceReq := withSubject(httptest.NewRequest(http.MethodPost, "/", nil), "alice")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, aliceReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("alice: status = %d, want %d", rec.Code, http.StatusOK)
	}

	bobReq := withSubject(httptest.NewRequest(http.MethodPost, "/", nil), "bob")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, bobReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("bob: status = %d, want %d (separate bucket from alice)", rec.Code, http.StatusOK)
	}
}
