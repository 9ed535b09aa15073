// Package book реализует HTTP-обработчик бронирования экзамена.
//
// Handler принимает JSON-запрос с экзаменом и датой, валидирует их,
// извлекает снимок пользователя из контекста и закрепляет дату за одной
// незабронированной попыткой.
package book

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/http/middlewarectx"
	"github.com/magabrotheeeer/academy-commerce/internal/http/response"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
)

// Handler управляет HTTP-запросами на бронирование экзамена.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики экзаменов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики бронирования.
type Service interface {
	Book(ctx context.Context, userID string, examID int, date time.Time) error
}

// Request — тело запроса бронирования.
type Request struct {
	ExamID int       `json:"examId" validate:"required,gt=0"`
	Date   time.Time `json:"date" validate:"required"`
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
// @Summary Забронировать экзамен
// @Description Закрепляет дату за одной незабронированной попыткой экзамена. Повторное бронирование той же попытки невозможно.
// @Tags Exams
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Экзамен и дата"
// @Success 200 {object} map[string]any "Сообщение об успешном бронировании"
// @Failure 400 {object} response.ErrorResponse "Нет свободной попытки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Экзамен не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /exams/book [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.exam.book"
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

	if err := h.service.Book(r.Context(), user.ID, req.ExamID, req.Date); err != nil {
		log.Error("failed to book exam", sl.Err(err))
		w.WriteHeader(apperr.Status(err))
		render.JSON(w, r, response.Error("could not book exam"))
		return
	}

	log.Info("exam booked", slog.Int("exam_id", req.ExamID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Exam successfully booked",
	}))
}
