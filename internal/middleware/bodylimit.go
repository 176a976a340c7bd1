package middleware

import "net/http"

// DefaultBodyLimit is the largest request body the API accepts (10 MB).
const DefaultBodyLimit = 10 << 20

// BodyLimit caps the request body at n bytes. Reading past the cap fails,
// which the JSON decoders in the handlers report as a bad body. A declared
// Content-Length over the cap is rejected before the handler runs.
func BodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > n {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				w.Write([]byte(`{"error":"payload_too_large","message":"request body too large"}`))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
