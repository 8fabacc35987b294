// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sentinel

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorResponse is the standard error body for all handlers.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// DecisionRequestBody is the POST /v1/decision body. Topic is optional; an
// empty topic falls back to the service default.
type DecisionRequestBody struct {
	Topic string `json:"topic"`
}

// FeedbackRequestBody is the POST /v1/feedback body. The payload is logged
// and acknowledged; there is no feedback store yet.
type FeedbackRequestBody struct {
	IncidentID     string `json:"incidentId"`
	AdjustSeverity string `json:"adjust_severity"`
	Comment        string `json:"comment"`
}

// Handlers holds the HTTP handlers for the sentinel service.
type Handlers struct {
	service *Service
}

// NewHandlers creates the handlers for the given service.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleDecision handles POST /v1/decision.
//
// Description:
//
//	Runs the full pipeline for the requested topic and returns the decision.
//	A missing or empty body is treated as a request for the default topic.
//
// Response:
//
//	200 OK: DecisionResponse
//	500 Internal Server Error: every degradation level failed
//
// Thread Safety: This method is safe for concurrent use.
func (h *Handlers) HandleDecision(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleDecision")

	var body DecisionRequestBody
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "request body must be JSON",
			Code:  "INVALID_BODY",
		})
		return
	}

	resp, err := h.service.Decide(c.Request.Context(), body.Topic)
	if err != nil {
		logger.Error("Decision pipeline failed at every level",
			slog.String("topic", body.Topic),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "decision pipeline failed",
			Code:  "PIPELINE_FAILED",
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleFeedback handles POST /v1/feedback.
//
// Feedback is logged and acknowledged. Persisting it for model adjustment
// is future work.
func (h *Handlers) HandleFeedback(c *gin.Context) {
	requestID := getOrCreateRequestID(c)

	var body FeedbackRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "request body must be JSON",
			Code:  "INVALID_BODY",
		})
		return
	}

	slog.Info("Received feedback",
		slog.String("request_id", requestID),
		slog.String("incident_id", body.IncidentID),
		slog.String("adjust_severity", body.AdjustSeverity))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// HandleHealth handles GET /v1/decision/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleReady handles GET /v1/decision/ready. The service has no warmup
// phase; readiness tracks liveness.
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

// getOrCreateRequestID returns the caller-supplied X-Request-ID header or
// mints a new one so log lines for a request stay correlated.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}
