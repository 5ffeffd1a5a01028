// Package api serves transfer list inspection over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/tlc/internal/logger"
	"github.com/samcharles93/tlc/pkg/tl"
)

const (
	// DefaultMaxBody caps uploaded lists.
	DefaultMaxBody int64 = 1 << 20
	// DefaultReportLimit is how many reports the store keeps.
	DefaultReportLimit = 256
)

type Config struct {
	MaxBody int64
	Store   *ReportStore
	Logger  logger.Logger
}

type Server struct {
	maxBody int64
	store   *ReportStore
	log     logger.Logger
	clock   func() time.Time
}

func NewServer(cfg Config) *Server {
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = DefaultMaxBody
	}
	if cfg.Store == nil {
		cfg.Store = NewReportStore(DefaultReportLimit)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	return &Server{
		maxBody: cfg.MaxBody,
		store:   cfg.Store,
		log:     cfg.Logger,
		clock:   time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(requestID)
	e.POST("/v1/validate", s.handleValidate)
	e.POST("/v1/info", s.handleInfo)
	e.GET("/v1/tags", s.handleTags)
	e.GET("/v1/reports/:id", s.handleGetReport)
	e.DELETE("/v1/reports/:id", s.handleDeleteReport)
}

func (s *Server) handleValidate(c *echo.Context) error {
	buf, err := readBody(c.Request().Body, s.maxBody)
	if err != nil {
		return writeBodyError(c, err)
	}
	id := requestIDOf(c)
	resp := ValidateResponse{ID: id, Valid: true}
	if err := tl.Validate(buf); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}
	s.store.Put(Report{
		ID:      id,
		Kind:    "validate",
		Created: s.clock().Unix(),
		Bytes:   len(buf),
		Valid:   resp.Valid,
		Error:   resp.Error,
	})
	s.log.Debug("validated transfer list", "request_id", id, "bytes", len(buf), "valid", resp.Valid)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleInfo(c *echo.Context) error {
	buf, err := readBody(c.Request().Body, s.maxBody)
	if err != nil {
		return writeBodyError(c, err)
	}
	id := requestIDOf(c)
	l, err := tl.Parse(buf)
	if err != nil {
		s.store.Put(Report{
			ID:      id,
			Kind:    "info",
			Created: s.clock().Unix(),
			Bytes:   len(buf),
			Error:   err.Error(),
		})
		return writeError(c, http.StatusUnprocessableEntity, "invalid_transfer_list", err.Error(), "")
	}
	info := Describe(l)
	s.store.Put(Report{
		ID:       id,
		Kind:     "info",
		Created:  s.clock().Unix(),
		Bytes:    len(buf),
		Valid:    true,
		ListInfo: &info,
	})
	s.log.Debug("described transfer list", "request_id", id, "entries", len(info.Entries))
	return c.JSON(http.StatusOK, InfoResponse{ID: id, ListInfo: info})
}

func (s *Server) handleTags(c *echo.Context) error {
	return c.JSON(http.StatusOK, TagsResponse{Object: "list", Data: describeTags()})
}

func (s *Server) handleGetReport(c *echo.Context) error {
	id := c.Param("id")
	r, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, "report not found: "+id)
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) handleDeleteReport(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "report not found: "+id)
	}
	return c.JSON(http.StatusOK, DeleteReportResp{ID: id, Deleted: true})
}
