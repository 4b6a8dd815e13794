package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abaevpavel/pdfer-base/estimate"
	"github.com/abaevpavel/pdfer-base/middleware"
	"github.com/abaevpavel/pdfer-base/model"
	"github.com/abaevpavel/pdfer-base/pkg/logger"
	"github.com/abaevpavel/pdfer-base/render"
	"github.com/abaevpavel/pdfer-base/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const pdfContentType = "application/pdf"

// errNotObject is reported for bodies that are not a JSON object.
var errNotObject = errors.New("request body must be a JSON object")

// ScopeHandler serves the internal scope report endpoints.
type ScopeHandler struct {
	storage  service.Storage
	exporter service.Exporter
	renderer *render.HTMLRenderer
	store    *service.ReportStore
	maxBody  int64 // <= 0 = unlimited
	now      func() time.Time
	newID    func() string
}

func NewScopeHandler(storage service.Storage, exporter service.Exporter, renderer *render.HTMLRenderer, store *service.ReportStore, maxBodyBytes int64) *ScopeHandler {
	return &ScopeHandler{
		storage:  storage,
		exporter: exporter,
		renderer: renderer,
		store:    store,
		maxBody:  maxBodyBytes,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// GenerateResponse mirrors the envelope estimating clients already parse.
type GenerateResponse struct {
	StatusCode int          `json:"statusCode"`
	Body       GenerateBody `json:"body"`
}

type GenerateBody struct {
	InternalScope string `json:"internal_scope"`
	Data          string `json:"data"`
	ReportID      string `json:"report_id"`
}

// ResolveResponse is the assembled document without rendering.
type ResolveResponse struct {
	Data            *model.Document `json:"data"`
	CustomItems     []*model.Item   `json:"customItems"`
	ItemCount       int             `json:"itemCount"`
	FormulaFailures []string        `json:"formulaFailures"`
}

// Generate assembles the posted estimate, exports it to PDF and stores the
// artifact.
func (h *ScopeHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.assemble(c)
	if err != nil {
		rejectEstimate(c, err)
		return
	}

	now := h.now()
	view := render.NewView(result, now)

	var html bytes.Buffer
	if err := h.renderer.Render(&html, view); err != nil {
		logger.Error(ctx, "failed to render report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report"})
		return
	}

	pdf, err := h.exporter.Export(ctx, view, html.Bytes())
	if err != nil {
		logger.Error(ctx, "failed to export pdf", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF: " + err.Error()})
		return
	}

	reportID := h.newID()
	ctx = logger.With(ctx, logger.ReportIDKey, reportID)

	name := ArtifactName(now, reportID)
	url, err := h.storage.Put(ctx, name, pdf, pdfContentType)
	if err != nil {
		logger.Error(ctx, "failed to store pdf", "error", err, "name", name)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store PDF: " + err.Error()})
		return
	}

	data, err := json.Marshal(result.Document)
	if err != nil {
		logger.Error(ctx, "failed to encode document", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode document"})
		return
	}

	report := &model.Report{
		ID:              reportID,
		Kind:            model.KindInternalScope,
		Tenant:          middleware.GetTenant(c),
		Username:        middleware.GetUsername(c),
		Filename:        name,
		URL:             url,
		ObjectName:      name,
		ItemCount:       result.ItemCount,
		CustomItemCount: len(result.CustomItems),
		FormulaFailures: len(result.Failures),
		Size:            len(pdf),
		CreatedAt:       now,
	}
	h.removeArtifacts(ctx, h.store.Save(report))

	logger.Info(ctx, "internal scope generated",
		"items", report.ItemCount,
		"custom_items", report.CustomItemCount,
		"size", report.Size,
	)

	c.JSON(http.StatusOK, GenerateResponse{
		StatusCode: http.StatusOK,
		Body: GenerateBody{
			InternalScope: url,
			Data:          string(data),
			ReportID:      reportID,
		},
	})
}

// Preview returns the report markup without exporting it.
func (h *ScopeHandler) Preview(c *gin.Context) {
	result, err := h.assemble(c)
	if err != nil {
		rejectEstimate(c, err)
		return
	}

	var html bytes.Buffer
	if err := h.renderer.Render(&html, render.NewView(result, h.now())); err != nil {
		logger.Error(c.Request.Context(), "failed to render report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", html.Bytes())
}

// Resolve returns the assembled document as JSON.
func (h *ScopeHandler) Resolve(c *gin.Context) {
	result, err := h.assemble(c)
	if err != nil {
		rejectEstimate(c, err)
		return
	}

	failures := make([]string, len(result.Failures))
	for i, f := range result.Failures {
		failures[i] = f.Expr
	}
	customItems := result.CustomItems
	if customItems == nil {
		customItems = []*model.Item{}
	}

	c.JSON(http.StatusOK, ResolveResponse{
		Data:            result.Document,
		CustomItems:     customItems,
		ItemCount:       result.ItemCount,
		FormulaFailures: failures,
	})
}

// assemble decodes the request body and resolves it. An empty or null body
// is an empty estimate.
func (h *ScopeHandler) assemble(c *gin.Context) (*estimate.Result, error) {
	var reader io.Reader = c.Request.Body
	if h.maxBody > 0 {
		reader = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	doc := &model.Document{}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if trimmed[0] != '{' {
			return nil, errNotObject
		}
		if err := json.Unmarshal(trimmed, doc); err != nil {
			return nil, err
		}
	}

	result := estimate.Assemble(doc)
	for _, f := range result.Failures {
		logger.Warn(c.Request.Context(), "formula left unresolved", "expr", f.Expr, "error", f.Err)
	}
	return result, nil
}

// removeArtifacts deletes the stored files of evicted reports.
func (h *ScopeHandler) removeArtifacts(ctx context.Context, reports []*model.Report) {
	for _, r := range reports {
		if err := h.storage.Delete(ctx, r.ObjectName); err != nil {
			logger.Warn(ctx, "failed to delete evicted artifact", "report_id", r.ID, "error", err)
		}
	}
}

// rejectEstimate answers a request whose body could not be decoded.
func rejectEstimate(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("Estimate exceeds %d bytes", tooLarge.Limit),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid estimate: " + err.Error()})
}

// artifactSuffixLen is how much of the report id goes into a file name.
const artifactSuffixLen = 8

// ArtifactName returns the file name for report id generated at t. The id
// suffix keeps names from reports generated in the same microsecond apart.
func ArtifactName(t time.Time, id string) string {
	suffix := strings.ReplaceAll(id, "-", "")
	if len(suffix) > artifactSuffixLen {
		suffix = suffix[:artifactSuffixLen]
	}
	name := fmt.Sprintf("internal_scope_%d.%06d", t.Unix(), t.Nanosecond()/int(time.Microsecond))
	if suffix != "" {
		name += "_" + suffix
	}
	return name + ".pdf"
}
