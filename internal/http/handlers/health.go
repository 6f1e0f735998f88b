package handlers

import (
	"net/http"
	"time"
)

var startedAt = time.Now()

// Health reports liveness plus how long the process has been up.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "dcgen",
		"uptime":  time.Since(startedAt).Round(time.Second).String(),
	})
}
