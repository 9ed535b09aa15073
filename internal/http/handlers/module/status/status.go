// Package status реализует HTTP-обработчик статуса разблокировки модуля.
package status

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/academy-commerce/internal/http/middlewarectx"
	"github.com/magabrotheeeer/academy-commerce/internal/http/response"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
)

// Handler управляет HTTP-запросами на статус разблокировки.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики модулей
}

// Service описывает интерфейс бизнес-логики статуса разблокировки.
type Service interface {
	UnlockedStatus(ctx context.Context, userID string, moduleID int) bool
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить статус разблокировки модуля
// @Description Сообщает, разблокирован ли модуль для пользователя. Сбой выборки трактуется как «не разблокирован».
// @Tags Modules
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID модуля"
// @Success 200 {object} map[string]any "Статус разблокировки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /modules/{id}/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.module.status"
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

	unlocked := h.service.UnlockedStatus(r.Context(), user.ID, id)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"unlocked": unlocked,
	}))
}
