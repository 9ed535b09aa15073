// Package content реализует HTTP-обработчик доступа к закрытому
// содержимому экзамена. Доступ требует действующего бронирования.
package content

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/http/middlewarectx"
	"github.com/magabrotheeeer/academy-commerce/internal/http/response"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// Handler управляет HTTP-запросами на чтение содержимого экзамена.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики экзаменов
}

// Service описывает интерфейс бизнес-логики содержимого экзамена.
type Service interface {
	Content(ctx context.Context, userID string, examID int) (*models.ExamContent, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить содержимое экзамена
// @Description Возвращает закрытое содержимое экзамена. Требуется неиспользованная попытка с датой в будущем.
// @Tags Exams
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID экзамена"
// @Success 200 {object} map[string]any "Содержимое экзамена"
// @Failure 401 {object} response.ErrorResponse "Нет действующего бронирования"
// @Failure 404 {object} response.ErrorResponse "Содержимое не найдено"
// @Router /exams/content/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.exam.content"
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

	user, ok := middlewarectx.SessionUserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	content, err := h.service.Content(r.Context(), user.ID, id)
	if err != nil {
		log.Error("failed to read exam content", sl.Err(err))
		w.WriteHeader(apperr.Status(err))
		render.JSON(w, r, response.Error("could not read exam content"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"content": content,
	}))
}
