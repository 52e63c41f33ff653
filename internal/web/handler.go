package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"TickerWatch/internal/model"
	"TickerWatch/internal/watchlist"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Watchlist is the controller surface the web layer drives.
type Watchlist interface {
	AddSymbol(ctx context.Context, raw string) error
	RemoveSymbol(ctx context.Context, symbol string)
	RefreshAll(ctx context.Context) watchlist.RefreshResult
	SortedView() []model.WatchlistEntry
	Message() string
	ClearMessage()
	Subscribe(fn func())
}

type addRequest struct {
	Symbol string `json:"symbol" form:"symbol" validate:"required,max=16"`
}

// ValidationError is one failed field in a request body.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string            `json:"error"`
	Details []ValidationError `json:"details,omitempty"`
}

// Handler serves the watchlist routes.
type Handler struct {
	wl       Watchlist
	hub      *Hub
	validate *validator.Validate
	log      zerolog.Logger
}

func NewHandler(wl Watchlist, hub *Hub, log zerolog.Logger) *Handler {
	return &Handler{wl: wl, hub: hub, validate: validator.New(), log: log}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.page)
	api := e.Group("/api")
	api.GET("/watchlist", h.list)
	api.POST("/watchlist", h.add)
	api.DELETE("/watchlist/:symbol", h.remove)
	api.POST("/refresh", h.refresh)
	api.DELETE("/message", h.clearMessage)
	e.GET("/ws", h.ws)
}

func (h *Handler) list(c echo.Context) error {
	return c.JSON(http.StatusOK, h.snapshot())
}

func (h *Handler) add(c echo.Context) error {
	var req addRequest
	if details := h.bindAndValidate(c, &req); details != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: details})
	}

	if err := h.wl.AddSymbol(c.Request().Context(), req.Symbol); err != nil {
		return c.JSON(statusFor(err), errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusCreated, h.snapshot())
}

func (h *Handler) remove(c echo.Context) error {
	h.wl.RemoveSymbol(c.Request().Context(), c.Param("symbol"))
	return c.JSON(http.StatusOK, h.snapshot())
}

func (h *Handler) refresh(c echo.Context) error {
	res := h.wl.RefreshAll(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]any{
		"attempted": nonNil(res.Attempted),
		"failed":    nonNil(res.Failed),
		"skipped":   res.Skipped,
	})
}

func (h *Handler) clearMessage(c echo.Context) error {
	h.wl.ClearMessage()
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) page(c echo.Context) error {
	var buf strings.Builder
	if err := pageTemplate.Execute(&buf, h.snapshot()); err != nil {
		h.log.Error().Err(err).Msg("render page")
		return echo.NewHTTPError(http.StatusInternalServerError, "render failed")
	}
	return c.HTML(http.StatusOK, buf.String())
}

func (h *Handler) ws(c echo.Context) error {
	h.hub.Serve(c.Response(), c.Request(), h.snapshot())
	return nil
}

func (h *Handler) snapshot() viewResponse {
	return buildView(h.wl.SortedView(), h.wl.Message())
}

// bindAndValidate binds req, applies defaults and validates it.
func (h *Handler) bindAndValidate(c echo.Context, req any) []ValidationError {
	if err := c.Bind(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return []ValidationError{{Code: "ERR_BIND", Message: fmt.Sprintf("%v", he.Message)}}
		}
		return []ValidationError{{Code: "ERR_BIND", Message: err.Error()}}
	}
	if err := defaults.Set(req); err != nil {
		return []ValidationError{{Code: "ERR_DEFAULTS", Message: err.Error()}}
	}
	if err := h.validate.StructCtx(c.Request().Context(), req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
		}
		out := make([]ValidationError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, ValidationError{
				Code:    "ERR_" + strings.ToUpper(fe.Tag()),
				Field:   strings.ToLower(fe.Field()),
				Message: fieldMessage(fe),
			})
		}
		return out
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// statusFor maps controller errors to HTTP status codes.
func statusFor(err error) int {
	var fe *watchlist.FetchError
	switch {
	case errors.Is(err, watchlist.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, watchlist.ErrDuplicateSymbol):
		return http.StatusConflict
	case errors.As(err, &fe):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
