// Package read реализует HTTP-обработчик чтения модуля по ID.
package read

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/http/response"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// Handler обрабатывает запросы на получение модуля по идентификатору.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики модулей
}

// Service описывает интерфейс бизнес-логики чтения модуля.
type Service interface {
	Get(ctx context.Context, id int) (*models.Module, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить модуль по ID
// @Tags Modules
// @Produce  json
// @Param id path int true "ID модуля"
// @Success 200 {object} map[string]any "Модуль"
// @Failure 404 {object} response.ErrorResponse "Модуль не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /modules/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.module.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	mod, err := h.service.Get(r.Context(), id)
	if err != nil {
		log.Error("failed to read module", sl.Err(err))
		w.WriteHeader(apperr.Status(err))
		render.JSON(w, r, response.Error("could not read module"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"module": mod,
	}))
}
