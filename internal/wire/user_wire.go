package wire

import (
	"bus-tracker/internal/adaptor"
	"bus-tracker/internal/data/repository"
	"bus-tracker/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		r.Patch("/me", userHandler.UpdateProfile)
		r.Post("/me/password", userHandler.ChangePassword)
	})
}
