// Package server exposes the assistant over a gin HTTP API.
package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"pdf-role-chat/internal/config"
	"pdf-role-chat/internal/service"
)

const maxUploadMemory = 32 << 20 // 32 MB

func NewRouter(cfg *config.Config, svc *service.Service) *gin.Engine {
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(RequestLogger(), gin.Recovery())
	router.MaxMultipartMemory = maxUploadMemory

	h := NewHandler(cfg, svc, time.Now())
	router.GET("/healthz", h.Health)

	v1 := router.Group("/api/v1")
	v1.GET("/roles", h.Roles)
	v1.GET("/languages", h.Languages)

	api := v1.Group("")
	api.Use(Session(svc.Sessions()))
	api.POST("/documents", h.Upload)
	api.GET("/documents", h.Documents)
	api.GET("/documents/:name/pages/:page", h.Preview)
	api.GET("/density", h.Density)
	api.POST("/ask", h.Ask)
	api.POST("/refine", h.Refine)
	api.POST("/summary", h.Summary)
	api.POST("/keywords", h.Keywords)
	api.POST("/concept-map", h.ConceptMap)
	api.POST("/timeline", h.Timeline)
	api.POST("/suggestions", h.Suggestions)
	api.GET("/history", h.History)

	return router
}
