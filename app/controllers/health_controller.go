package controllers

import (
	"context"
	"net/http"
	"time"

	"todoapi/app/store"

	"github.com/sirupsen/logrus"
)

// HealthController reports whether the store is reachable.
type HealthController struct {
	store   store.Store
	timeout time.Duration
	logger  *logrus.Logger
}

func NewHealthController(s store.Store, timeout time.Duration, logger *logrus.Logger) *HealthController {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &HealthController{store: s, timeout: timeout, logger: logger}
}

// Health handles GET /healthz.
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := c.store.Ping(ctx); err != nil {
		c.logger.WithError(err).Warn("health check failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
