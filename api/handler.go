package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/interviewd/archive"
	"github.com/skillsenselab/interviewd/logger"
	"github.com/skillsenselab/interviewd/observability"
	"github.com/skillsenselab/interviewd/recording"
	"github.com/skillsenselab/interviewd/server/middleware"
	"github.com/skillsenselab/interviewd/session"
)

// Config holds API-level defaults applied when a create request omits them.
type Config struct {
	// DefaultDuration is used when the client does not specify one.
	DefaultDuration time.Duration `yaml:"default_duration" mapstructure:"default_duration"`
	// GracePeriod is the pre-deadline buffer for every session.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
	// RequestsPerMinute enables per-session rate limiting when positive.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.DefaultDuration <= 0 {
		c.DefaultDuration = 15 * time.Minute
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = 10 * time.Second
	}
}

// Handler serves the interview HTTP API.
type Handler struct {
	cfg      Config
	sessions *session.Manager
	recorder *recording.Controller
	archiver *archive.Archiver
	metrics  *observability.Metrics
	log      *logger.Logger
}

// NewHandler creates a Handler. metrics and archiver may be nil, in which
// case metric recording and artifact archiving are skipped.
func NewHandler(cfg Config, sessions *session.Manager, recorder *recording.Controller, archiver *archive.Archiver, metrics *observability.Metrics, log *logger.Logger) *Handler {
	cfg.ApplyDefaults()
	return &Handler{
		cfg:      cfg,
		sessions: sessions,
		recorder: recorder,
		archiver: archiver,
		metrics:  metrics,
		log:      log.WithComponent("api"),
	}
}

// RegisterRoutes mounts all interview routes on the given router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/v1")
	interviews := v1.Group("/interviews")
	if h.cfg.RequestsPerMinute > 0 {
		interviews.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMinute: h.cfg.RequestsPerMinute,
			KeyFunc:           middleware.SessionBasedKey,
		}))
	}

	interviews.POST("", h.createInterview)
	interviews.GET("/:id", h.getInterview)
	interviews.DELETE("/:id", h.deleteInterview)
	interviews.GET("/:id/question", h.nextQuestion)
	interviews.POST("/:id/answers", h.submitAnswer)
	interviews.POST("/:id/recording/start", h.startRecording)
	interviews.POST("/:id/recording/stop", h.stopRecording)
	interviews.POST("/:id/finalize", h.finalizeInterview)
	interviews.GET("/:id/result", h.getResult)
}
