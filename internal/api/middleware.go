package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// recoverer converts panics into the generic server-error response. The
// panic value and stack go to the log only; the client sees the same body as
// any other unclassified fault.
func recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("Panic recovered",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					respondWithJSON(w, logger, http.StatusInternalServerError, serverErrorResponse{
						Error:   "Server error",
						Message: "An unexpected error occurred",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger writes one access line per request on the serving-layer
// logger, which is clamped to warn: routine traffic stays silent and only
// client errors and failures surface.
func requestLogger(serverLogger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
			}
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				serverLogger.Error("request failed", fields...)
			case ww.Status() >= http.StatusBadRequest:
				serverLogger.Warn("request rejected", fields...)
			default:
				serverLogger.Info("request served", fields...)
			}
		})
	}
}

type rateLimiter interface {
	Allow() bool
}

// newTokenBucketLimiter builds a process-wide token bucket. Zero or negative
// arguments fall back to a minimal limiter rather than disabling limiting.
func newTokenBucketLimiter(perSecond float64, burst int) rateLimiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// rateLimit rejects requests beyond the bucket's capacity with a 429.
func rateLimit(limiter rateLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				respondWithJSON(w, logger, http.StatusTooManyRequests, serverErrorResponse{
					Error:   "Too many requests",
					Message: "Rate limit exceeded, please retry shortly",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
