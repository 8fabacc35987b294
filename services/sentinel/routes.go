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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all sentinel routes with the router.
//
// Description:
//
//	Registers the /v1 endpoints with the given Gin router group. The router
//	group should already have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST /v1/decision - Run the decision pipeline for a topic
//	POST /v1/feedback - Acknowledge operator feedback
//	GET  /v1/decision/health - Health check
//	GET  /v1/decision/ready - Readiness check
//
// Example:
//
//	service := sentinel.NewService(sentinel.LoadServiceConfigFromEnv())
//	handlers := sentinel.NewHandlers(service)
//
//	v1 := router.Group("/v1")
//	sentinel.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	rg.POST("/decision", handlers.HandleDecision)
	rg.POST("/feedback", handlers.HandleFeedback)
	rg.GET("/decision/health", handlers.HandleHealth)
	rg.GET("/decision/ready", handlers.HandleReady)
}
