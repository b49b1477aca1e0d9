package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Respond marshals data as JSON and writes it to w with statusCode,
// recording the status into the request's Values for logging middleware.
// A nil data with StatusNoContent writes headers only.
func Respond(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error {
	if err := SetStatusCode(ctx, statusCode); err != nil {
		return err
	}

	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err := w.Write(jsonData); err != nil {
		return err
	}

	return nil
}

// Decode reads the request body as JSON into v, then checks v against its
// `validate` struct tags with go-playground/validator.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	return nil
}
