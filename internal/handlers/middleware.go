package handlers

import (
	"crypto/subtle"
	"log"
	"net/http"
	"time"
)

// statusRecorder captures the status written by the wrapped handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs each request with its status and duration
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// RequireToken authenticates the transport gateway with the shared bot
// token. This authenticates the calling process, not individual users.
func RequireToken(token string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get("X-Bot-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "", nil)
			return
		}
		next(w, r)
	}
}
