package http

import (
	"io"
	"net/http"
	"time"

	"exambank/internal/app"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the REST API, the live search socket and health check.
func NewRouter(service *app.ExamService, debounce time.Duration, log logrus.FieldLogger) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	NewExamHandler(service, log).Register(r)
	r.HandleFunc("/ws/search", NewSearchHandler(service, debounce, log).ServeWS)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	var h http.Handler = cors(r)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(log), handlers.PrintRecoveryStack(true))(h)
	return handlers.CustomLoggingHandler(io.Discard, h, accessLog(log))
}

func accessLog(log logrus.FieldLogger) handlers.LogFormatter {
	return func(_ io.Writer, p handlers.LogFormatterParams) {
		log.WithFields(logrus.Fields{
			"method":   p.Request.Method,
			"path":     p.URL.Path,
			"status":   p.StatusCode,
			"size":     p.Size,
			"duration": time.Since(p.TimeStamp).String(),
		}).Info("request")
	}
}
