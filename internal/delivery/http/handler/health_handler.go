package handler

import (
	"context"
	"net/http"
	"time"

	"go-appointment-saas/pkg/response"
)

// ReadyCheck is one named dependency checked by /ready.
type ReadyCheck struct {
	Name  string
	Check func(context.Context) error
}

type HealthHandler struct {
	checks []ReadyCheck
}

func NewHealthHandler(checks ...ReadyCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health is liveness only.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
}

// Ready reports 503 with the failing dependencies when any check fails.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	failures := map[string]string{}
	for _, c := range h.checks {
		if c.Check == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		err := c.Check(ctx)
		cancel()
		if err != nil {
			failures[c.Name] = err.Error()
		}
	}

	if len(failures) > 0 {
		response.ServiceUnavailable(w, "Dependencies unavailable", failures)
		return
	}
	response.Success(w, http.StatusOK, "ready", map[string]string{"status": "ready"})
}
