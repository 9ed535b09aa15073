// Package read реализует HTTP-обработчик чтения экзамена по ID.
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

// Handler обрабатывает запросы на получение экзамена по идентификатору.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики экзаменов
}

// Service описывает интерфейс бизнес-логики чтения экзамена.
type Service interface {
	Get(ctx context.Context, id int) (*models.Exam, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить экзамен по ID
// @Tags Exams
// @Produce  json
// @Param id path int true "ID экзамена"
// @Success 200 {object} map[string]any "Экзамен"
// @Failure 404 {object} response.ErrorResponse "Экзамен не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /exams/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.exam.read"
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

	exam, err := h.service.Get(r.Context(), id)
	if err != nil {
		log.Error("failed to read exam", sl.Err(err))
		w.WriteHeader(apperr.Status(err))
		render.JSON(w, r, response.Error("could not read exam"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"exam": exam,
	}))
}
