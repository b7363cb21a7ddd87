package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

type HealthChecker struct {
	checks map[string]func(context.Context) error
}

// NewHealthChecker checks only the backends infra actually opened.
func NewHealthChecker(infra Infrastructure) *HealthChecker {
	checks := make(map[string]func(context.Context) error)

	if pg := infra.Postgres(); pg != nil {
		checks["postgres"] = pg.Ping
	}
	if rdb := infra.Redis(); rdb != nil {
		checks["redis"] = rdb.Ping
	}
	if mongo := infra.Mongo(); mongo != nil {
		checks["mongo"] = mongo.Ping
	}
	if bolt := infra.Bolt(); bolt != nil {
		checks["bolt"] = func(context.Context) error { return bolt.Ping() }
	}

	return &HealthChecker{checks: checks}
}

func (h *HealthChecker) check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	errs := make(chan error, len(h.checks))
	for name, ping := range h.checks {
		go func() {
			if err := ping(ctx); err != nil {
				errs <- fmt.Errorf("%s: %w", name, err)
				return
			}
			errs <- nil
		}()
	}

	collected := make([]error, 0, len(h.checks))
	for range h.checks {
		collected = append(collected, <-errs)
	}
	return errors.Join(collected...)
}

func (h *HealthChecker) Handler(c *gin.Context) {
	if err := h.check(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "fail",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "pass",
	})
}
