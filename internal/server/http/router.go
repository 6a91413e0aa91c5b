package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter registers every route on a fresh engine.
func NewRouter(h *Handler, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), accessLog(log))

	api := r.Group("/api")
	api.POST("/session", h.SignIn)

	tools := api.Group("/tools")
	tools.POST("/password-strength", h.PasswordStrength)
	tools.POST("/risk", h.Risk)
	tools.POST("/password", h.GeneratePassword)
	tools.GET("/fake-identity", h.FakeIdentity)
	tools.GET("/masked-email", h.MaskedEmail)
	tools.POST("/breaches", h.CheckBreaches)
	tools.POST("/json", h.FormatJSON)
	tools.POST("/qr", h.QRCode)

	authed := api.Group("", h.RequireSession)
	authed.DELETE("/session", h.SignOut)
	authed.GET("/vault", h.ListRecords)
	authed.POST("/vault", h.AddRecord)
	authed.PUT("/vault/:id", h.UpdateRecord)
	authed.DELETE("/vault/:id", h.DeleteRecord)
	authed.GET("/backup", h.ExportBackup)
	authed.DELETE("/data", h.ClearAll)
	authed.GET("/settings", h.GetSettings)
	authed.PATCH("/settings", h.UpdateSetting)
	authed.GET("/dashboard", h.Dashboard)

	return r
}

// accessLog mirrors the gRPC logging interceptor: metadata only, never bodies.
func accessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", c.ClientIP()),
		)
	}
}
