package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/attend/internal/api/handlers"
	"github.com/your-org/attend/internal/api/ws"
	"github.com/your-org/attend/internal/auth"
	"github.com/your-org/attend/internal/config"
	"github.com/your-org/attend/internal/face"
	"github.com/your-org/attend/internal/queue"
	"github.com/your-org/attend/internal/storage"
	"github.com/your-org/attend/internal/vision"
)

type RouterConfig struct {
	APIKey     string
	DB         *storage.PostgresStore
	MinIO      *storage.MinIOStore
	Producer   *queue.Producer
	Hub        *ws.Hub
	Engine     *vision.Engine
	Matcher    *face.Matcher
	Enroller   *face.Enroller
	QualityCfg config.QualityConfig
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.MinIO, cfg.Producer, cfg.Engine)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAPIKey(cfg.APIKey))

	// WebSocket live feed
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Employees
	empH := handlers.NewEmployeeHandler(cfg.DB)
	v1.POST("/employees", empH.Create)
	v1.GET("/employees", empH.List)
	v1.GET("/employees/:id", empH.Get)

	// Enrollment
	enrollH := handlers.NewEnrollmentHandler(cfg.DB, cfg.MinIO, cfg.Enroller)
	v1.POST("/employees/:id/enroll", enrollH.Enroll)
	v1.DELETE("/employees/:id/face", enrollH.ClearFace)

	// Face data export (backup / transfer)
	faceDataH := handlers.NewFaceDataHandler(cfg.DB)
	v1.GET("/employees/:id/face", faceDataH.Export)

	// Stateless face checks for the capture UI
	faceH := handlers.NewFaceHandler(cfg.Engine, cfg.Matcher, cfg.QualityCfg)
	v1.POST("/face/pose", faceH.CheckPose)
	v1.POST("/face/quality", faceH.CheckQuality)
	v1.POST("/face/duplicate", faceH.CheckDuplicate)

	// Attendance
	attH := handlers.NewAttendanceHandler(cfg.DB, cfg.MinIO, cfg.Producer, cfg.Matcher, faceH)
	v1.POST("/attendance/check", attH.Check)
	v1.GET("/attendance", attH.List)

	return r
}
