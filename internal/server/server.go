package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Tzeene1459/ncit-semantic-mapper/internal/core"
	"github.com/Tzeene1459/ncit-semantic-mapper/internal/core/model"
)

type Server struct {
	resolver *core.Resolver
	log      *zap.Logger
}

func New(resolver *core.Resolver, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		resolver: resolver,
		log:      log,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.Health)
	r.POST("/resolve", s.Resolve)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type ResolveRequest struct {
	Input                    string   `json:"input" binding:"required"`
	TopK                     int      `json:"top_k"`
	DefinitionThresholdWords int      `json:"definition_threshold_words"`
	DeadlineMillis           int      `json:"deadline_ms"`
	BaselineWeight           *float64 `json:"baseline_weight"`
	ContextWeight            *float64 `json:"context_weight"`
}

func (s *Server) Resolve(c *gin.Context) {
	requestID := uuid.New().String()

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	opts := core.Options{
		TopK:                     req.TopK,
		DefinitionThresholdWords: req.DefinitionThresholdWords,
		Deadline:                 time.Duration(req.DeadlineMillis) * time.Millisecond,
	}
	if req.BaselineWeight != nil && req.ContextWeight != nil {
		opts.Weights = &core.RerankWeights{
			Baseline: *req.BaselineWeight,
			Context:  *req.ContextWeight,
		}
	}

	result, err := s.resolver.Resolve(c.Request.Context(), req.Input, opts)
	if err != nil {
		s.log.Warn("resolve failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	response := gin.H{"result": result}
	if result.Tier == model.TierNone {
		if suggestions, err := s.resolver.Suggest(c.Request.Context(), req.Input, 5); err == nil && len(suggestions) > 0 {
			response["suggestions"] = suggestions
		}
	}

	s.log.Info("resolved",
		zap.String("request_id", requestID),
		zap.String("tier", string(result.Tier)),
		zap.String("matched_code", result.MatchedCode))
	c.JSON(http.StatusOK, response)
}

// NotFound is a normal 200 outcome with tier NONE; only operational
// failures map to error statuses so callers can tell them apart.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, model.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
