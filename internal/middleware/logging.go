// internal/middleware/logging.go
package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMiddleware logs incoming requests using Logrus: method, path,
// duration, and remote address. Shaped to plug into mux.Router.Use.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("HTTP Request")
		})
	}
}

// LogWebSocketConnect is called from the session handler once the upgrade
// is accepted.
func LogWebSocketConnect(logger *logrus.Logger, remoteAddr, session string) {
	logger.WithFields(logrus.Fields{
		"remote":  remoteAddr,
		"session": session,
	}).Info("WebSocket connected")
}

// LogWebSocketDisconnect is called when a session's read loop exits.
func LogWebSocketDisconnect(logger *logrus.Logger, remoteAddr, session string, err error) {
	fields := logrus.Fields{
		"remote":  remoteAddr,
		"session": session,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("WebSocket disconnected")
}
