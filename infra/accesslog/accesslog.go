// Package accesslog writes one structured logrus entry per HTTP request.
package accesslog

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/sirupsen/logrus"
)

// New returns a JSON logrus logger writing to out.
func New(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Formatter turns gorilla request parameters into logrus fields. Server
// errors are logged at error level.
func Formatter(l *logrus.Logger) handlers.LogFormatter {
	return func(_ io.Writer, p handlers.LogFormatterParams) {
		entry := l.WithFields(logrus.Fields{
			"method":     p.Request.Method,
			"path":       p.URL.Path,
			"query":      p.URL.RawQuery,
			"status":     p.StatusCode,
			"size":       p.Size,
			"remote":     p.Request.RemoteAddr,
			"request_id": p.Request.Header.Get("X-Request-ID"),
		}).WithTime(p.TimeStamp)
		if p.StatusCode >= http.StatusInternalServerError {
			entry.Error("request")
			return
		}
		entry.Info("request")
	}
}

// Handler wraps h so every request is logged to l.
func Handler(l *logrus.Logger, h http.Handler) http.Handler {
	return handlers.CustomLoggingHandler(l.Out, h, Formatter(l))
}
