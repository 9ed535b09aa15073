// Package redeem реализует HTTP-обработчик погашения купона.
//
// Handler принимает JSON-запрос с кодом купона, валидирует его формат,
// извлекает снимок пользователя из контекста и вызывает бизнес-логику
// погашения. Награда купона зачисляется пользователю из токена.
package redeem

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
)

// Handler управляет HTTP-запросами на погашение купонов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики погашения купонов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики погашения купона.
type Service interface {
	Redeem(ctx context.Context, user models.SessionUser, code string) (string, error)
}

// Request — тело запроса погашения купона.
type Request struct {
	Code string `json:"code" validate:"required,len=32,hexadecimal"`
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
// @Summary Погасить купон
// @Description Одноразово списывает код купона и выдает привязанную награду: кубы, подписку или экзамен.
// @Tags Coupons
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Код купона"
// @Success 200 {object} map[string]any "Сообщение об успешном погашении"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Купон неизвестен или уже использован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /coupons/use [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.coupon.redeem"
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

	msg, err := h.service.Redeem(r.Context(), user, req.Code)
	if err != nil {
		log.Error("failed to redeem coupon", sl.Err(err))
		w.WriteHeader(apperr.Status(err))
		render.JSON(w, r, response.Error("could not redeem coupon"))
		return
	}

	log.Info("coupon redeemed")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": msg,
	}))
}
