package artists

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atelierhq/atelier/internal/platform/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listArtists)
	return router
}

func (handler *Handler) listArtists(writer http.ResponseWriter, request *http.Request) {
	year, _ := strconv.Atoi(request.URL.Query().Get("year"))

	entries, err := handler.service.List(request.Context(), year)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}
