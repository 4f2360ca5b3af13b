package http

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
	"github.com/gin-gonic/gin"
)

// PipelineRunner is the orchestrator surface the delivery layer needs.
type PipelineRunner interface {
	ProcessDocument(ctx context.Context, doc domain.RawDocument) (*domain.PipelineResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	pipeline PipelineRunner
}

// NewHandler creates a new HTTP handler
func NewHandler(pipeline PipelineRunner) *Handler {
	return &Handler{pipeline: pipeline}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "order-extraction-pipeline",
		"version": "1.0.0",
	})
}

// processRequest is the ingress contract for one raw document. Binary
// payloads (PDF attachments) arrive base64-encoded in contentBase64.
type processRequest struct {
	VendorHint    string `json:"vendorHint" binding:"required"`
	Kind          string `json:"kind" binding:"required,oneof=text binary"`
	Content       string `json:"content"`
	ContentBase64 string `json:"contentBase64"`
}

// ProcessOrder runs one raw document through the pipeline
func (h *Handler) ProcessOrder(c *gin.Context) {
	if h.pipeline == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pipeline not configured"})
		return
	}

	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc := domain.RawDocument{
		VendorHint: req.VendorHint,
		Kind:       domain.DocumentKind(req.Kind),
		ReceivedAt: time.Now(),
	}
	switch doc.Kind {
	case domain.KindText:
		if req.Content == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "content is required for text documents"})
			return
		}
		doc.Content = []byte(req.Content)
	case domain.KindBinary:
		if req.ContentBase64 == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "contentBase64 is required for binary documents"})
			return
		}
		payload, err := base64.StdEncoding.DecodeString(req.ContentBase64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "contentBase64 is not valid base64"})
			return
		}
		doc.Content = payload
	}

	result, err := h.pipeline.ProcessDocument(c.Request.Context(), doc)
	if err != nil {
		if errors.Is(err, domain.ErrStructuralExtraction) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
