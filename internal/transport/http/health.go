package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"digipraman/pkg/platform/httputil"
	"digipraman/pkg/requestcontext"
)

// DependencyCheck probes one optional backend such as Redis or Kafka.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler reports liveness together with the database clock.
type HealthHandler struct {
	dbNow  func(ctx context.Context) (time.Time, error)
	checks []DependencyCheck
	logger *slog.Logger
}

func NewHealthHandler(dbNow func(ctx context.Context) (time.Time, error), logger *slog.Logger, checks ...DependencyCheck) *HealthHandler {
	return &HealthHandler{dbNow: dbNow, checks: checks, logger: logger}
}

type healthResponse struct {
	Status       string            `json:"status"`
	DBTime       *time.Time        `json:"dbTime,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	status := http.StatusOK

	if h.dbNow != nil {
		now, err := h.dbNow(ctx)
		if err != nil {
			h.logger.ErrorContext(ctx, "health check failed",
				"dependency", "postgres",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
		} else {
			resp.DBTime = &now
		}
	}

	for _, c := range h.checks {
		if resp.Dependencies == nil {
			resp.Dependencies = make(map[string]string, len(h.checks))
		}
		if err := c.Check(ctx); err != nil {
			h.logger.WarnContext(ctx, "dependency degraded",
				"dependency", c.Name,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			resp.Dependencies[c.Name] = "down"
			if resp.Status == "ok" {
				resp.Status = "degraded"
			}
			continue
		}
		resp.Dependencies[c.Name] = "up"
	}

	httputil.WriteJSON(w, status, resp)
}
