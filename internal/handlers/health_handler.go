package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// @Summary      Liveness probe
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	dbOK := h.db.Ping() == nil
	status := "ok"
	if !dbOK {
		status = "error"
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":     dbOK,
		"status": status,
		"db":     status,
	})
}

// @Summary      Readiness probe against the store
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health/db [get]
func (h *HealthHandler) HealthDB(c *gin.Context) {
	var one int
	if err := h.db.QueryRow(`SELECT 1`).Scan(&one); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": one == 1})
}
