package middleware

import (
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
)

// RequestIDHeader 回應中帶回的 request id header
const RequestIDHeader = "X-Request-Id"

// RequestID 沿用 chi 的 request id（尊重呼叫端帶入的 X-Request-Id），並回寫到回應 header
func RequestID(next http.Handler) http.Handler {
	return chimid.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimid.GetReqID(r.Context()); id != "" {
			w.Header().Set(RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	}))
}

func ReqID(r *http.Request) string {
	return chimid.GetReqID(r.Context())
}
