// Package userexams реализует HTTP-обработчик списка купленных попыток
// экзаменов пользователя.
package userexams

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/http/middlewarectx"
	"github.com/magabrotheeeer/academy-commerce/internal/http/response"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// Handler управляет HTTP-запросами на список попыток пользователя.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики экзаменов
}

// Service описывает интерфейс бизнес-логики списка попыток.
type Service interface {
	ListUserExams(ctx context.Context, userID string) ([]*models.UserExam, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить купленные попытки экзаменов
// @Description Возвращает неиспользованные попытки экзаменов пользователя, включая незабронированные.
// @Tags Exams
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Попытки экзаменов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /exams/user/exams [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.exam.userexams"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.SessionUserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	exams, err := h.service.ListUserExams(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to list user exams", sl.Err(err))
		w.WriteHeader(apperr.Status(err))
		render.JSON(w, r, response.Error("could not list user exams"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"userExams": exams,
	}))
}
