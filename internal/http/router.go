package api

import (
	"fmt"
	stdhttp "net/http"

	h "useradmin/internal/http/handlers"
	"useradmin/internal/http/middleware"
	"useradmin/internal/repositories"
	"useradmin/internal/session"
	"useradmin/internal/view"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConsoleDeps wires the console router.
type ConsoleDeps struct {
	Sessions       *session.Registry
	Logger         *zap.SugaredLogger
	AllowedOrigins []string
}

// NewConsoleRouter serves the users page and its per-tab session routes.
func NewConsoleRouter(deps ConsoleDeps) (*gin.Engine, error) {
	tmpl, err := view.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := newEngine(deps.Logger, deps.AllowedOrigins)
	r.SetHTMLTemplate(tmpl)

	console := h.Console{Sessions: deps.Sessions, Logger: deps.Logger}

	r.GET("/health", h.Health)
	r.GET("/users", console.Index)

	s := r.Group("/users/s/:sid")
	{
		s.GET("/table", console.Table)
		s.GET("/state", console.State)
		s.GET("/events", console.Events)
		s.GET("/export.pdf", console.ExportPDF)

		s.POST("/search", console.Search)
		s.POST("/filter", console.Filter)
		s.POST("/page", console.Page)
		s.POST("/refresh", console.Refresh)
		s.POST("/modal/close", console.CloseModal)

		s.GET("/rows/new", console.NewRow)
		s.POST("/rows", console.CreateRow)
		s.GET("/rows/:id/edit", console.EditRow)
		s.POST("/rows/:id", console.UpdateRow)
		s.GET("/rows/:id/delete", console.AskDelete)
		s.POST("/rows/:id/delete", console.ConfirmDelete)

		s.DELETE("", console.Unmount)
	}

	return r, nil
}

// APIDeps wires the development users backend.
type APIDeps struct {
	Repo           repositories.UserRepository
	Logger         *zap.SugaredLogger
	AllowedOrigins []string
	HashCost       int
}

// NewAPIRouter serves the users REST resource the console reads.
func NewAPIRouter(deps APIDeps) *gin.Engine {
	r := newEngine(deps.Logger, deps.AllowedOrigins)
	users := h.UsersAPI{Repo: deps.Repo, Logger: deps.Logger, HashCost: deps.HashCost}

	r.GET("/health", h.Health)
	r.GET("/db-check", h.DBCheck)
	r.GET("/routes", h.Routes)

	g := r.Group("/users")
	g.GET("", users.GetUsers)
	g.GET("/:id", users.GetUserByID)
	g.POST("", users.CreateUser)
	g.PUT("/:id", users.UpdateUser)
	g.DELETE("/:id", users.DeleteUser)

	h.SetRouter(r)
	return r
}

func newEngine(logger *zap.SugaredLogger, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(logger), gin.Recovery(), middleware.CORS(origins))

	if err := r.SetTrustedProxies(nil); err != nil && logger != nil {
		logger.Warnw("failed to set trusted proxies", "error", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"message": "route not found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})
	return r
}
