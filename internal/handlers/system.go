package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var endpoints = []string{"/auth", "/projects", "/tasks", "/healthz"}

// Root describes the API
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Task Manager API",
		"endpoints": endpoints,
	})
}

// Health reports liveness
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Favicon answers browsers without a body
func Favicon(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
