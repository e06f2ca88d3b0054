package httpx

import (
	"net/http"

	"go.uber.org/zap"
)

func RecoveryMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := wrapResponseWriter(w)
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					// RequestIDMiddleware runs inside this one; its id is only on the header.
					requestID := RequestIDFrom(r)
					if requestID == "" {
						requestID = rw.Header().Get(requestIDHeader)
						if requestID != "" {
							r = r.WithContext(ContextWithRequestID(r.Context(), requestID))
						}
					}
					logger.Error("panic recovered",
						zap.String("request_id", requestID),
						zap.Any("error", err),
						zap.Stack("stack"),
					)
					if !rw.wroteHeader() {
						JSONError(rw, r, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", nil)
					}
				}
			}()
			next.ServeHTTP(rw, r)
		})
	}
}
