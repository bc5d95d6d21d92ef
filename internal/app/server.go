package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/GoArmGo/CatalogApp/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// runServer поднимает HTTP-сервер со всеми маршрутами каталога и
// блокируется до отмены контекста.
func (a *App) runServer(ctx context.Context) error {
	v := validator.New()

	movieHandler := handler.NewMovieHandler(a.movieUseCase, a.enrichPublisher, v, a.Logger)
	reviewHandler := handler.NewReviewHandler(a.reviewUseCase, v, a.Logger)
	userHandler := handler.NewUserHandler(a.userUseCase, a.reviewUseCase, a.tokenManager, v, a.Logger)
	wsHandler := handler.NewWSHandler(a.hub, a.Logger)

	r := chi.NewRouter()
	r.Use(handler.RequestLogger(a.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(a.Config.RequestTimeout))

	requireAuth := handler.AuthMiddleware(a.tokenManager, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", userHandler.Register)
		r.Post("/auth/login", userHandler.Login)
		r.Post("/auth/logout", userHandler.Logout)

		r.Get("/movies", movieHandler.ListMovies)
		r.Get("/movies/{id}", movieHandler.GetMovieByID)
		r.Post("/movies", movieHandler.CreateMovie)
		r.Post("/movies/batch", movieHandler.CreateMoviesBatch)
		r.Get("/search-external", movieHandler.SearchExternal)
		r.Post("/enrich", movieHandler.EnrichAsync)

		r.Get("/reviews/{id}", reviewHandler.ListMovieReviews)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/auth/me", userHandler.Me)
			r.Put("/users/me", userHandler.UpdateProfile)
			r.Delete("/users/me", userHandler.DeleteAccount)
			r.Get("/users/me/reviews", userHandler.MyReviews)

			r.Post("/reviews", reviewHandler.CreateReview)
			r.Delete("/reviews/{id}", reviewHandler.DeleteReview)
		})
	})

	r.Get("/ws", wsHandler.Serve)

	serverAddr := fmt.Sprintf(":%s", a.Config.ServerPort)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("ошибка при запуске сервера: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("stopping http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.Logger.Info("http server stopped")
	return nil
}
