// Package balance реализует HTTP-обработчик чтения баланса кубов.
package balance

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

// Handler управляет HTTP-запросами на чтение баланса кубов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики леджера кубов
}

// Service описывает интерфейс бизнес-логики чтения баланса.
type Service interface {
	GetBalance(ctx context.Context, userID string) (*models.CubeBalance, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить баланс кубов
// @Description Возвращает актуальный баланс кубов пользователя. Пользователь без записи баланса получает ноль.
// @Tags Cubes
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Баланс кубов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /cubes/count [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cubes.balance"
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

	balance, err := h.service.GetBalance(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to read cube balance", sl.Err(err))
		w.WriteHeader(apperr.Status(err))
		render.JSON(w, r, response.Error("could not read cube balance"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"cubes": balance.Count,
	}))
}
