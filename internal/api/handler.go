package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/video-analitics/catalog/internal/service"
	"github.com/video-analitics/catalog/pkg/logger"
	"github.com/video-analitics/catalog/pkg/models"
	"github.com/video-analitics/catalog/pkg/status"
)

const requestIDHeader = "X-Request-ID"

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type CatalogResponse struct {
	Success bool `json:"success"`
	models.CatalogPage
}

type DetailResponse struct {
	Success bool `json:"success"`
	models.ResourceDetail
}

type EpisodesResponse struct {
	Success bool `json:"success"`
	models.EpisodeList
}

type CacheResponse struct {
	Success bool `json:"success"`
	Removed int  `json:"removed"`
}

type HealthResponse struct {
	Success      bool   `json:"success"`
	Status       string `json:"status"`
	CacheEntries int    `json:"cache_entries"`
	PagesSeen    uint32 `json:"pages_seen"`
}

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// SetupRoutes registers the API. gatherer may be nil to skip /metrics.
func SetupRoutes(app *fiber.App, h *Handler, gatherer prometheus.Gatherer) {
	app.Use(requestLogger)

	app.Get("/health", h.Health)
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	api.Get("/catalog", h.Catalog)
	api.Get("/search", h.Search)
	api.Get("/movie", h.Movie)
	api.Get("/series", h.Series)
	api.Get("/episodes", h.Episodes)
	api.Get("/episode", h.Episode)
	api.Post("/cache", h.ClearCache)
	api.Delete("/cache", h.ClearCache)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Success:      true,
		Status:       "ok",
		CacheEntries: h.svc.CacheSize(),
		PagesSeen:    h.svc.PagesSeen(),
	})
}

func (h *Handler) Catalog(c *fiber.Ctx) error {
	page, err := h.svc.Catalog(c.UserContext(), queryPage(c), c.Query("type"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(CatalogResponse{Success: true, CatalogPage: page})
}

func (h *Handler) Search(c *fiber.Ctx) error {
	page, err := h.svc.Search(c.UserContext(), c.Query("q"), queryPage(c), c.Query("type"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(CatalogResponse{Success: true, CatalogPage: page})
}

func (h *Handler) Movie(c *fiber.Ctx) error {
	d, err := h.svc.Movie(c.UserContext(), ref(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(DetailResponse{Success: true, ResourceDetail: d})
}

func (h *Handler) Series(c *fiber.Ctx) error {
	d, err := h.svc.Series(c.UserContext(), ref(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(DetailResponse{Success: true, ResourceDetail: d})
}

func (h *Handler) Episode(c *fiber.Ctx) error {
	d, err := h.svc.Episode(c.UserContext(), ref(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(DetailResponse{Success: true, ResourceDetail: d})
}

func (h *Handler) Episodes(c *fiber.Ctx) error {
	list, err := h.svc.Episodes(c.UserContext(), ref(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(EpisodesResponse{Success: true, EpisodeList: list})
}

func (h *Handler) ClearCache(c *fiber.Ctx) error {
	return c.JSON(CacheResponse{Success: true, Removed: h.svc.ClearCache()})
}

// queryPage returns 1 when page is absent and 0 when it is not a number,
// which the service rejects.
func queryPage(c *fiber.Ctx) int {
	raw := c.Query("page")
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func ref(c *fiber.Ctx) string {
	if u := c.Query("url"); u != "" {
		return u
	}
	return c.Query("id")
}

func fail(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, status.ErrInvalidInput):
		code = fiber.StatusBadRequest
	case errors.Is(err, status.ErrUpstreamUnavailable):
		code = fiber.StatusBadGateway
	}

	ev := logger.Log.Warn()
	if code >= 500 {
		ev = logger.Log.Error()
	}
	ev.Err(err).
		Str("request_id", requestID(c)).
		Str("path", c.Path()).
		Int("status", code).
		Msg("request failed")

	return c.Status(code).JSON(ErrorResponse{Success: false, Error: err.Error()})
}

func requestLogger(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Locals(requestIDHeader, id)
	c.Set(requestIDHeader, id)

	start := time.Now()
	err := c.Next()

	logger.Log.Info().
		Str("request_id", id).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Int64("time_ms", time.Since(start).Milliseconds()).
		Msg("request")
	return err
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDHeader).(string)
	return id
}
