package works

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

	// Public reads (anonymous callers see approved works only)
	router.Get("/", handler.listWorks)
	router.Get("/{id}", handler.getWork)

	// Create-or-update; the service performs its own authn gate so the
	// caller receives a structured Forbidden rather than a bare 401.
	router.Put("/", handler.putWork)

	// Staff only
	router.Group(func(staffRoute chi.Router) {
		staffRoute.Use(middleware.RequireRole(sec.RoleModerator))

		staffRoute.Post("/approve", handler.moderate(TransitionApprove))
		staffRoute.Post("/unapprove", handler.moderate(TransitionUnapprove))
		staffRoute.Post("/delete", handler.moderate(TransitionDelete))
	})

	return router
}

func (handler *Handler) listWorks(writer http.ResponseWriter, request *http.Request) {
	queryValues := request.URL.Query()

	query := ListQuery{
		ArtistID:     queryValues.Get("artistId"),
		IsUnapproved: queryValues.Get("isUnapproved") == "true",
	}
	if raw := queryValues.Get("year"); raw != "" {
		query.Year, _ = strconv.Atoi(raw)
	}
	if raw := queryValues.Get("week"); raw != "" {
		query.Week, _ = strconv.Atoi(raw)
	}

	results, err := handler.service.List(request.Context(), query, requestutil.Claims(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, results)
}

func (handler *Handler) getWork(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	work, err := handler.service.Get(request.Context(), id, requestutil.Claims(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, work)
}

func (handler *Handler) putWork(writer http.ResponseWriter, request *http.Request) {
	var input Work
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	work, err := handler.service.Put(request.Context(), &input, requestutil.Claims(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, work)
}

// moderationRequest is the body shared by all three batch endpoints.
type moderationRequest struct {
	IDs []string `json:"ids"`
}

func (handler *Handler) moderate(transition Transition) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var body moderationRequest
		if err := requestutil.DecodeJSON(request, &body); err != nil {
			respond.Error(writer, request, err)
			return
		}

		err := handler.service.Moderate(request.Context(), body.IDs, transition, requestutil.Claims(request))
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.NoContent(writer)
	}
}
