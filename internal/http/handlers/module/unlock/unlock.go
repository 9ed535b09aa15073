// Package unlock реализует HTTP-обработчик разблокировки модуля.
//
// Подписка, покрывающая тир модуля, дает бесплатную разблокировку;
// иначе списывается каталожная цена тира в кубах.
package unlock

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

// Handler управляет HTTP-запросами на разблокировку модулей.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики модулей
}

// Service описывает интерфейс бизнес-логики разблокировки.
type Service interface {
	Unlock(ctx context.Context, user models.SessionUser, moduleID int) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Разблокировать модуль
// @Description Открывает модуль за подписку или кубы. Неопубликованный модуль разблокировать нельзя.
// @Tags Modules
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID модуля"
// @Success 200 {object} map[string]any "Сообщение об успешной разблокировке"
// @Failure 400 {object} response.ErrorResponse "Модуль уже разблокирован или не хватает кубов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Модуль еще не опубликован"
// @Failure 404 {object} response.ErrorResponse "Модуль не найден"
// @Router /modules/{id}/unlock [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.module.unlock"
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

	msg, err := h.service.Unlock(r.Context(), user, id)
	if err != nil {
		log.Error("failed to unlock module", sl.Err(err))
		w.WriteHeader(apperr.Status(err))
		render.JSON(w, r, response.Error("could not unlock module"))
		return
	}

	log.Info("module unlocked", slog.Int("module_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": msg,
	}))
}
