package router

import (
	"socialite/internal/application"
	"socialite/internal/container"
	pginfra "socialite/internal/infrastructure/postgres"
	handlers "socialite/internal/interface/http"
	"socialite/internal/router/modules"
)

func buildUserHandler() *handlers.UserHandler {
	repo := pginfra.NewUserRepository(container.GetPGPool())

	// An interface holding a typed nil pointer would dodge the service's
	// nil checks, so only assign when the publisher exists.
	var emails application.EmailEnqueuer
	if p := container.GetRabbitPub(); p != nil {
		emails = p
	}

	service := application.NewUserService(
		repo,
		container.GetTokens(),
		emails,
		container.GetLogger(),
	)
	return handlers.NewUserHandler(service, container.GetLogger())
}

func buildPostHandler() *handlers.PostHandler {
	repo := pginfra.NewPostRepository(container.GetPGPool())

	service := application.NewPostService(
		repo,
		container.GetBroker(),
		container.GetES(),
		container.GetConfig().ESPostsIndex,
		container.GetLogger(),
	)
	return handlers.NewPostHandler(service, container.GetBroker(), container.GetLogger())
}

// InitModules initializes all application modules and registers them with the
// router registry. Called once during startup.
func InitModules(r *Registry) {
	r.Add(modules.NewUserModule(buildUserHandler()))
	r.Add(modules.NewPostModule(buildPostHandler(), container.GetTokens()))
	r.Add(modules.NewDebugModule())
}
