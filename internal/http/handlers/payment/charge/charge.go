// Package charge реализует HTTP-обработчик проведения платежа.
//
// Handler принимает JSON-запрос с картой и корзиной, валидирует их и
// проводит расчёт: сумма считается по каталожным ценам, списывается с
// карты и позиции корзины выдаются пользователю.
package charge

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/http/middlewarectx"
	"github.com/magabrotheeeer/academy-commerce/internal/http/response"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
	"github.com/magabrotheeeer/academy-commerce/internal/services/payment"
)

// Handler управляет HTTP-запросами на проведение платежа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики платежей
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики проведения платежа.
type Service interface {
	Settle(ctx context.Context, user models.SessionUser, cardID string,
		items []models.CartItem) (string, error)
}

// Request — тело запроса проведения платежа. Сумма не принимается от
// клиента: она считается по каталожным ценам на стороне сервера.
type Request struct {
	CardID string                 `json:"cardId" validate:"required,uuid"`
	Cart   []models.DummyCartItem `json:"cart" validate:"required,min=1,dive"`
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Провести платёж
// @Description Считает сумму корзины по каталожным ценам, списывает её с карты и выдает позиции корзины.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Карта и корзина"
// @Success 200 {object} map[string]any "Сообщение об успешном платеже"
// @Failure 400 {object} response.ErrorResponse "Недостаточно средств или конфликт подписки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Карта или позиция каталога не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /payment/charge [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.charge"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, ok := middlewarectx.SessionUserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	items, err := payment.ParseCart(req.Cart)
	if err != nil {
		log.Error("failed to parse cart", sl.Err(err))
		w.WriteHeader(apperr.Status(err))
		render.JSON(w, r, response.Error("invalid cart item category"))
		return
	}

	msg, err := h.service.Settle(r.Context(), user, req.CardID, items)
	if err != nil {
		log.Error("failed to settle payment", sl.Err(err))
		w.WriteHeader(apperr.Status(err))
		render.JSON(w, r, response.Error("could not process payment"))
		return
	}

	log.Info("payment settled")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": msg,
	}))
}
