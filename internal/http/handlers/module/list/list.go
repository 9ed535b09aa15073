// Package list реализует HTTP-обработчик каталога учебных модулей.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/http/response"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// Handler управляет HTTP-запросами на чтение каталога модулей.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики модулей
}

// Service описывает интерфейс бизнес-логики каталога модулей.
type Service interface {
	List(ctx context.Context) ([]*models.Module, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить каталог модулей
// @Tags Modules
// @Produce  json
// @Success 200 {object} map[string]any "Список модулей"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /modules [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.module.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	modules, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list modules", sl.Err(err))
		w.WriteHeader(apperr.Status(err))
		render.JSON(w, r, response.Error("could not list modules"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"modules": modules,
	}))
}
