package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-appointment-saas/internal/scheduling"
	"go-appointment-saas/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown frequency", scheduling.ErrUnknownFrequency, http.StatusBadRequest},
		{"invalid interval", scheduling.ErrInvalidInterval, http.StatusBadRequest},
		{"invalid weekday", scheduling.ErrInvalidWeekday, http.StatusBadRequest},
		{"invalid month day", scheduling.ErrInvalidMonthDay, http.StatusBadRequest},
		{"negative count", scheduling.ErrInvalidCount, http.StatusBadRequest},
		{"wrapped clock", fmt.Errorf("time_of_day: %w", scheduling.ErrInvalidClock), http.StatusBadRequest},
		{"slot conflict", usecase.ErrSlotConflict, http.StatusConflict},
		{"not found", usecase.ErrAppointmentNotFound, http.StatusNotFound},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err, "Failed to handle request")
			assert.Equal(t, tt.status, rec.Code)

			var body struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "Failed to handle request", body.Message)
			}
		})
	}
}
