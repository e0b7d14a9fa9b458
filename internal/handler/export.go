package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mgjeanpierre85-cpu/ml-forex/internal/mirror"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/service"
)

// ExportHandler serves the flat-file mirror and the guarded maintenance
// operation that bulk-marks stale PENDING rows.
type ExportHandler struct {
	Mirror     *mirror.CSVMirror
	Service    *service.SignalService
	Logger     *zap.Logger
	AdminToken string
}

func (h *ExportHandler) Register(r *gin.Engine) {
	r.GET("/download-csv", h.downloadCSV)
	r.GET("/debug-csv", h.debugCSV)
	r.POST("/admin/reset-pending", h.resetPending)
}

func (h *ExportHandler) downloadCSV(c *gin.Context) {
	data, err := h.Mirror.Contents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "detail": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="signals.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *ExportHandler) debugCSV(c *gin.Context) {
	data, err := h.Mirror.Contents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "detail": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}

// resetPending marks every PENDING row OUTDATED. Administrative side channel
// only; requires the configured admin token, and is disabled entirely when no
// token is configured.
func (h *ExportHandler) resetPending(c *gin.Context) {
	if h.AdminToken == "" {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "detail": "admin endpoint disabled"})
		return
	}
	if c.GetHeader("X-Admin-Token") != h.AdminToken {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "detail": "bad admin token"})
		return
	}

	count, err := h.Service.MarkStale(c.Request.Context(), time.Time{})
	if err != nil {
		h.Logger.Error("reset pending failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "outdated": count})
}
