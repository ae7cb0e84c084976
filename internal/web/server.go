// Package web serves the local JSON API: dashboard summary, entries,
// compliance issues, categorization, ingestion, and LEDES export.
package web

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/billexact/billexact/internal/config"
	"github.com/billexact/billexact/internal/ingest"
	"github.com/billexact/billexact/internal/logging"
	"github.com/billexact/billexact/internal/storage"
	"github.com/billexact/billexact/internal/utbms"
)

// Server is the local HTTP API over a store.
type Server struct {
	store    *storage.Store
	cfg      config.Config
	cat      *utbms.Categorizer
	ingestor *ingest.Service
	log      *logrus.Logger
	router   *gin.Engine
}

// NewServer wires the routes over the store.
func NewServer(store *storage.Store, cfg config.Config) *Server {
	cat := utbms.NewCategorizer()
	cat.Override = store.Override

	ingestor := ingest.NewService(store)
	ingestor.Filters = cfg.ActivityWatch.Filters()

	s := &Server{
		store:    store,
		cfg:      cfg,
		cat:      cat,
		ingestor: ingestor,
		log:      logging.GetLogger(),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	// Local single-user tool: the dashboard and the API share localhost.
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type")
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/", s.handleDashboard)
	r.GET("/api/entries", s.handleEntries)
	r.GET("/api/issues", s.handleIssues)
	r.POST("/api/categorize", s.handleCategorize)
	r.POST("/api/ingest", s.handleIngest)
	r.POST("/api/export", s.handleExport)

	s.router = r
	return s
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	addr := s.cfg.Server.Addr
	if addr == "" {
		addr = config.DefaultServerAddr
	}
	s.log.WithFields(logrus.Fields{"addr": addr}).Info("serving dashboard API")
	return s.router.Run(addr)
}
