// In file: cmd/voiceservice/handler.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/apperrors"
	"github.com/chengwenxing-cmd/VoiceService/internal/dialogue"
	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
	"github.com/chengwenxing-cmd/VoiceService/internal/middleware"
	"github.com/chengwenxing-cmd/VoiceService/internal/service"
)

// =================================================================================
// Intent Handler
// =================================================================================

// IntentHandler exposes the recognition service over HTTP.
type IntentHandler struct {
	service   *service.Service
	logger    *zap.Logger
	startedAt time.Time
}

func NewIntentHandler(svc *service.Service, logger *zap.Logger) *IntentHandler {
	return &IntentHandler{service: svc, logger: logger.Named("http"), startedAt: time.Now()}
}

// envelope is the body of every response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
	Data    any    `json:"data"`
}

type locationRequest struct {
	City      string   `json:"city" binding:"required"`
	Province  string   `json:"province"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Success", Data: data})
}

// renderError writes the error envelope. For recognition requests the query
// is echoed back inside a synthetic ERROR intent.
func renderError(c *gin.Context, err error) {
	appErr, isApp := apperrors.As(err)
	if !isApp {
		appErr = apperrors.Internal(err)
	}
	code := int(appErr.Code)
	_ = c.Error(err)

	c.AbortWithStatusJSON(appErr.HTTPStatus(), envelope{
		Success: false,
		Message: appErr.Message,
		Code:    code,
		Data: gin.H{
			"intent":     "ERROR",
			"confidence": "0.0",
			"query":      c.GetString(queryKey),
			"result": gin.H{
				"status":  "error",
				"message": appErr.Message,
				"code":    code,
				"data":    gin.H{},
			},
		},
	})
}

const queryKey = "query"

// Register mounts the API routes on r.
func (h *IntentHandler) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/health", h.HandleHealth)

	in := api.Group("/intent")
	in.POST("/recognize", h.HandleRecognize)
	in.POST("/location", h.HandleSetLocation)
	in.GET("/location", h.HandleGetLocation)
	in.GET("/history", h.HandleHistory)
	in.GET("/recent", h.HandleRecent)
	in.POST("/session/:id/clear", h.HandleClearSession)
	in.DELETE("/session/:id", h.HandleDeleteSession)
}

func (h *IntentHandler) HandleRecognize(c *gin.Context) {
	var req service.RecognizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, apperrors.Validation("无效的请求: "+err.Error()))
		return
	}
	c.Set(queryKey, req.Text)

	resp, err := h.service.Recognize(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("recognition failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		renderError(c, err)
		return
	}
	ok(c, resp)
}

func (h *IntentHandler) HandleSetLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, apperrors.Validation("无效的位置信息: "+err.Error()))
		return
	}
	sessionID := c.DefaultQuery("session_id", service.DefaultSessionID)
	loc, err := h.service.SetLocation(sessionID, dialogue.Location{
		City:      req.City,
		Province:  req.Province,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		renderError(c, err)
		return
	}
	ok(c, gin.H{"session_id": sessionID, "location": loc})
}

func (h *IntentHandler) HandleGetLocation(c *gin.Context) {
	sessionID := c.DefaultQuery("session_id", service.DefaultSessionID)
	loc, err := h.service.Location(sessionID)
	if err != nil {
		renderError(c, err)
		return
	}
	ok(c, gin.H{"session_id": sessionID, "location": loc})
}

func (h *IntentHandler) HandleHistory(c *gin.Context) {
	sessionID := c.DefaultQuery("session_id", service.DefaultSessionID)
	ok(c, gin.H{"session_id": sessionID, "history": h.service.History(sessionID)})
}

func (h *IntentHandler) HandleRecent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			renderError(c, apperrors.Validation("limit必须是非负整数"))
			return
		}
		limit = n
	}
	intents, err := h.service.RecentIntents(c.Request.Context(), limit)
	if err != nil {
		renderError(c, err)
		return
	}
	if intents == nil {
		intents = []*intent.Intent{}
	}
	ok(c, gin.H{"intents": intents})
}

func (h *IntentHandler) HandleClearSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.ClearSession(id); err != nil {
		renderError(c, err)
		return
	}
	ok(c, gin.H{"session_id": id, "cleared": true})
}

func (h *IntentHandler) HandleDeleteSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.DeleteSession(id); err != nil {
		renderError(c, err)
		return
	}
	ok(c, gin.H{"session_id": id, "deleted": true})
}

func (h *IntentHandler) HandleHealth(c *gin.Context) {
	ok(c, gin.H{
		"status":   "ok",
		"build":    GetBuildInfo(),
		"uptime_s": int64(time.Since(h.startedAt).Seconds()),
		"sessions": h.service.Stats(),
	})
}

// newEngine builds the gin engine with the middleware stack and routes.
func newEngine(h *IntentHandler, cfg *AppConfig, logger *zap.Logger) *gin.Engine {
	engine := gin.New()
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	engine.Use(
		middleware.RequestID(),
		middleware.AccessLog(logger),
		middleware.Recovery(logger, renderError),
		limiter.Middleware(renderError),
	)
	engine.NoRoute(func(c *gin.Context) {
		renderError(c, apperrors.NotFound("接口不存在"))
	})
	h.Register(engine)
	return engine
}
