// Package list реализует HTTP-обработчик каталога экзаменов.
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

// Handler управляет HTTP-запросами на чтение каталога экзаменов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики экзаменов
}

// Service описывает интерфейс бизнес-логики каталога экзаменов.
type Service interface {
	List(ctx context.Context) ([]*models.Exam, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить каталог экзаменов
// @Tags Exams
// @Produce  json
// @Success 200 {object} map[string]any "Список экзаменов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /exams [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.exam.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	exams, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list exams", sl.Err(err))
		w.WriteHeader(apperr.Status(err))
		render.JSON(w, r, response.Error("could not list exams"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"exams": exams,
	}))
}
