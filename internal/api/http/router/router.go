package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidstream/identity/internal/api/http/handler"
	"github.com/vidstream/identity/internal/api/http/middleware"
	"github.com/vidstream/identity/internal/logger"
	"github.com/vidstream/identity/internal/model"
)

// Router assembles the HTTP routes and middleware for the identity server.
type Router struct {
	userService    handler.UserService
	tokens         middleware.TokenParser
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	userService handler.UserService,
	tokens middleware.TokenParser,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		userService:    userService,
		tokens:         tokens,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register builds the chi handler with middleware and all routes attached.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokens, r.contextManager, r.logger)

	users := handler.NewUsers(r.userService, r.contextManager, r.logger)

	root := chi.NewRouter()
	root.Use(
		middleware.Recover(r.logger),
		logging.Handle,
	)

	root.Route("/api/v1/users", func(router chi.Router) {
		router.Post("/register", users.Register)
		router.Post("/login", users.Login)
		router.Post("/refresh-token", users.Refresh)

		router.Group(func(guarded chi.Router) {
			guarded.Use(authenticate.Handle)
			guarded.Post("/logout", users.Logout)
		})
	})

	return root
}
