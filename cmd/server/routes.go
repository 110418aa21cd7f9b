// Package main provides the news questionnaire LINE bot server entry point.
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/newspick/newspick-linebot-go/internal/buildinfo"
	"github.com/newspick/newspick-linebot-go/internal/storage"
	"github.com/newspick/newspick-linebot-go/internal/webhook"
)

// setupRoutes configures all HTTP routes
func setupRoutes(engine *gin.Engine, webhookHandler *webhook.Handler, db *storage.DB, registry *prometheus.Registry) {
	// Root endpoint - service identity
	rootHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "newspick-linebot",
			"version": buildinfo.Version,
			"commit":  buildinfo.Commit,
		})
	}
	engine.GET("/", rootHandler)
	engine.HEAD("/", rootHandler)

	// Health check endpoints
	// Liveness Probe - checks if the application is alive (minimal check)
	// This should NEVER check dependencies - only that the process is running
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	engine.GET("/healthz", healthHandler)
	engine.HEAD("/healthz", healthHandler)

	// Readiness Probe - checks if the application is ready to serve traffic
	readyHandler := func(c *gin.Context) {
		if err := db.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		answerCount, _ := db.CountAnswers(c.Request.Context())

		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
			"storage": gin.H{
				"answers": answerCount,
			},
		})
	}
	engine.GET("/ready", readyHandler)
	engine.HEAD("/ready", readyHandler)

	// LINE webhook callback endpoint
	engine.POST("/callback", webhookHandler.Handle)

	// Prometheus metrics endpoint
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}
