// Package refresh реализует HTTP-обработчик перевыпуска токена доступа.
//
// Снимок данных в токене фиксируется на момент выпуска; только перевыпуск
// подтягивает актуальный баланс кубов и действующую подписку.
package refresh

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
)

// Handler управляет HTTP-запросами на перевыпуск токена.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики перевыпуска токена
}

// Service описывает интерфейс бизнес-логики перевыпуска токена.
type Service interface {
	Refresh(ctx context.Context, userID string) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Перевыпустить токен доступа
// @Description Выпускает новый токен со свежим снимком баланса кубов и подписки.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Токен доступа"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"
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

	token, err := h.service.Refresh(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to refresh token", sl.Err(err))
		w.WriteHeader(apperr.Status(err))
		render.JSON(w, r, response.Error("could not refresh token"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
	}))
}
