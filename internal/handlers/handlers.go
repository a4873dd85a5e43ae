package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func SendJSON(w http.ResponseWriter, status int, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(payload)
	return err
}

func sendJSONOrLog(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	if err := SendJSON(w, status, v); err != nil {
		logger.Error(
			"unable to send response",
			slog.Any("response", v),
			slog.Any("error", err),
		)
	}
}

// sendErrorOrLog sends {"error": e} with the given status.
func sendErrorOrLog(w http.ResponseWriter, logger *slog.Logger, status int, e error) {
	sendJSONOrLog(w, logger, status, wrapError(e))
}

// sendInternalError logs e and hides it from the client.
func sendInternalError(w http.ResponseWriter, logger *slog.Logger, msg string, e error) {
	logger.Error(msg, slog.Any("error", e))
	sendJSONOrLog(w, logger, http.StatusInternalServerError, map[string]string{
		"error": http.StatusText(http.StatusInternalServerError),
	})
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}
