package weeks

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atelierhq/atelier/internal/platform/middleware"
	requestutil "github.com/atelierhq/atelier/internal/platform/request"
	"github.com/atelierhq/atelier/internal/platform/respond"
	"github.com/atelierhq/atelier/internal/platform/sec"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listWeeks)

	router.Group(func(staffRoute chi.Router) {
		staffRoute.Use(middleware.RequireRole(sec.RoleModerator))
		staffRoute.Put("/", handler.overwriteWeeks)
	})

	return router
}

func (handler *Handler) listWeeks(writer http.ResponseWriter, request *http.Request) {
	year, _ := strconv.Atoi(request.URL.Query().Get("year"))

	entries, err := handler.service.List(request.Context(), year, requestutil.Claims(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

// overwriteRequest replaces a whole year's week map in one call.
type overwriteRequest struct {
	Year  int           `json:"year"`
	Weeks map[int]*Week `json:"weeks"`
}

func (handler *Handler) overwriteWeeks(writer http.ResponseWriter, request *http.Request) {
	var body overwriteRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.service.Overwrite(request.Context(), body.Year, body.Weeks, requestutil.Claims(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
