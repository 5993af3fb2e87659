package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"marketplace-service/middleware"

	"github.com/gorilla/mux"
	logger "github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// logRequest logs the request with the specified format.
// Shared package-level helper reused by every handler; pulls route details
// from gorilla/mux and the resolved identity from the access gate context.
// Matches: logger.Info("msg", fields...) ; uses zap.Error for errors etc.
func logRequest(r *http.Request, level string, message string, fields ...zap.Field) {
	routeName := ""
	if route := mux.CurrentRoute(r); route != nil {
		routeName = route.GetName()
	}

	// Build full message consistent with (timestamp - route - method - path - user)
	logMsg := time.Now().Format("2006-01-02 15:04:05") + " - " + routeName + " - " + r.Method + " - " + r.URL.Path
	if ident := middleware.AuthUser(r.Context()); ident != nil {
		logMsg += " - user:" + ident.Name
	}
	if message != "" {
		logMsg += " - " + message
	}

	allFields := append([]zap.Field{
		zap.String("route", routeName),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}, fields...)

	switch level {
	case "info":
		logger.Info(logMsg, allFields...)
	case "error":
		logger.Error(logMsg, allFields...)
	case "debug":
		logger.Debug(logMsg, allFields...)
	}
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
