// Package availability реализует HTTP-обработчик проверки занятых слотов
// экзамена на выбранную дату.
package availability

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
	"github.com/magabrotheeeer/academy-commerce/internal/http/response"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
)

// Handler управляет HTTP-запросами на проверку доступности слотов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики экзаменов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики проверки слотов.
type Service interface {
	CheckAvailability(ctx context.Context, examID int, from, to time.Time) ([]time.Time, error)
}

// Request — тело запроса проверки слотов.
type Request struct {
	ExamID    int       `json:"id" validate:"required,gt=0"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
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
// @Summary Получить занятые слоты экзамена
// @Description Возвращает занятые слоты экзамена в диапазоне дат. Сбой выборки слотов дает пустой список.
// @Tags Exams
// @Accept  json
// @Produce  json
// @Param request body Request true "Экзамен и диапазон дат"
// @Success 200 {object} map[string]any "Занятые слоты"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Экзамен не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /exams/availability [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.exam.availability"
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

	slots, err := h.service.CheckAvailability(r.Context(), req.ExamID, req.StartDate, req.EndDate)
	if err != nil {
		log.Error("failed to check availability", sl.Err(err))
		w.WriteHeader(apperr.Status(err))
		render.JSON(w, r, response.Error("could not check availability"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"takenSlots": slots,
	}))
}
