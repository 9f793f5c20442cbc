package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Zelvix/pkg/config"
)

func Health(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":               "ok",
			"env":                  cfg.AppEnv,
			"geminiEnabled":        cfg.IsGeminiEnabled,
			"geminiModel":          cfg.GeminiModel,
			"uploadRetentionHours": cfg.UploadRetentionHours,
		})
	}
}
