package controllers

import (
	"fmt"
	"net/http"
	"time"

	"referral-service/app"
	"referral-service/codes"
)

type HealthController struct {
	s *Srv
}

func GetHealthController(s *Srv) *HealthController {
	return &HealthController{s: s}
}

// GET /health
func (hc *HealthController) Health(c *app.Ctx) {
	c.JSON(http.StatusOK, app.H{
		"status":      "ok",
		"uptime":      formatUptime(time.Since(hc.s.Cfg.StartedAt)),
		"message":     "referral service is up",
		"sample_code": codes.GenerateVerificationCode(),
	})
}

func formatUptime(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%dh %dm %ds", secs/3600, (secs%3600)/60, secs%60)
}
