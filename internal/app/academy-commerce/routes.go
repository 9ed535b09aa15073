// Package academycommerce предоставляет сборку и маршруты основного приложения.
package academycommerce

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/coupon/redeem"
	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/cubes/balance"
	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/exam/availability"
	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/exam/book"
	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/exam/content"
	examlist "github.com/magabrotheeeer/academy-commerce/internal/http/handlers/exam/list"
	examread "github.com/magabrotheeeer/academy-commerce/internal/http/handlers/exam/read"
	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/exam/userexams"
	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/health"
	modulelist "github.com/magabrotheeeer/academy-commerce/internal/http/handlers/module/list"
	moduleread "github.com/magabrotheeeer/academy-commerce/internal/http/handlers/module/read"
	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/module/status"
	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/module/unlock"
	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/payment/cards"
	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/payment/charge"
	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/subscription/cancel"
	"github.com/magabrotheeeer/academy-commerce/internal/http/handlers/subscription/catalog"
	"github.com/magabrotheeeer/academy-commerce/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/academy-commerce/internal/services/auth"
	couponservice "github.com/magabrotheeeer/academy-commerce/internal/services/coupon"
	cubeservice "github.com/magabrotheeeer/academy-commerce/internal/services/cubes"
	examservice "github.com/magabrotheeeer/academy-commerce/internal/services/exam"
	moduleservice "github.com/magabrotheeeer/academy-commerce/internal/services/module"
	paymentservice "github.com/magabrotheeeer/academy-commerce/internal/services/payment"
	subservice "github.com/magabrotheeeer/academy-commerce/internal/services/subscription"
)

// Services собирает сервисы бизнес-логики, которыми управляют маршруты.
type Services struct {
	Auth          *authservice.AuthService
	Cubes         *cubeservice.CubeService
	Subscriptions *subservice.SubscriptionService
	Exams         *examservice.ExamService
	Coupons       *couponservice.CouponService
	Payments      *paymentservice.PaymentService
	Modules       *moduleservice.ModuleService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, services Services, tokenParser middlewarectx.TokenParser) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		prometheusMiddleware,
	)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, services.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, services.Auth).ServeHTTP)
		r.Get("/subscriptions", catalog.New(logger, services.Subscriptions).ServeHTTP)
		r.Get("/exams", examlist.New(logger, services.Exams).ServeHTTP)
		r.Get("/exams/{id}", examread.New(logger, services.Exams).ServeHTTP)
		r.Post("/exams/availability", availability.New(logger, services.Exams).ServeHTTP)
		r.Get("/modules", modulelist.New(logger, services.Modules).ServeHTTP)
		r.Get("/modules/{id}", moduleread.New(logger, services.Modules).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokenParser, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/auth/refresh", refresh.New(logger, services.Auth).ServeHTTP)
			r.Post("/coupons/use", redeem.New(logger, services.Coupons).ServeHTTP)
			r.Get("/cubes/count", balance.New(logger, services.Cubes).ServeHTTP)
			r.Post("/subscriptions/cancel", cancel.New(logger, services.Subscriptions).ServeHTTP)
			r.Get("/exams/user/exams", userexams.New(logger, services.Exams).ServeHTTP)
			r.Post("/exams/book", book.New(logger, services.Exams).ServeHTTP)
			r.Get("/exams/content/{id}", content.New(logger, services.Exams).ServeHTTP)
			r.Get("/payment/cards", cards.New(logger, services.Payments).ServeHTTP)
			r.Post("/payment/charge", charge.New(logger, services.Payments).ServeHTTP)
			r.Get("/modules/{id}/status", status.New(logger, services.Modules).ServeHTTP)
			r.Post("/modules/{id}/unlock", unlock.New(logger, services.Modules).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
