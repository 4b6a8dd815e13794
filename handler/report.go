package handler

import (
	"errors"
	"net/http"

	"github.com/abaevpavel/pdfer-base/middleware"
	"github.com/abaevpavel/pdfer-base/model"
	"github.com/abaevpavel/pdfer-base/pkg/logger"
	"github.com/abaevpavel/pdfer-base/service"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	storage service.Storage
	store   *service.ReportStore
}

func NewReportHandler(storage service.Storage, store *service.ReportStore) *ReportHandler {
	return &ReportHandler{
		storage: storage,
		store:   store,
	}
}

// List returns all reports for the current tenant
func (h *ReportHandler) List(c *gin.Context) {
	reports := h.store.ListByTenant(middleware.GetTenant(c))
	if reports == nil {
		reports = []*model.Report{}
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// Get returns a single report
func (h *ReportHandler) Get(c *gin.Context) {
	report, ok := h.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, report)
}

// Delete removes a report and its artifact
func (h *ReportHandler) Delete(c *gin.Context) {
	report, ok := h.lookup(c)
	if !ok {
		return
	}

	ctx := logger.With(c.Request.Context(), logger.ReportIDKey, report.ID)
	if err := h.storage.Delete(ctx, report.ObjectName); err != nil {
		logger.Error(ctx, "failed to delete artifact", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report"})
		return
	}
	if err := h.store.Delete(report.ID); err != nil && !errors.Is(err, service.ErrReportNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report"})
		return
	}

	logger.Info(ctx, "report deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Report deleted"})
}

// lookup finds the report named by the :id parameter. Reports of other
// tenants are reported as missing.
func (h *ReportHandler) lookup(c *gin.Context) (*model.Report, bool) {
	report, err := h.store.Get(c.Param("id"))
	if err != nil || report.Tenant != middleware.GetTenant(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return nil, false
	}
	return report, true
}
