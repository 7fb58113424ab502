package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/emberdating/ember/api/handler"
	"github.com/emberdating/ember/auth"
	"github.com/emberdating/ember/cloudinary"
	"github.com/emberdating/ember/config"
	"github.com/emberdating/ember/database"
	"github.com/emberdating/ember/photo"
	"github.com/emberdating/ember/token"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Server is the Ember HTTP API server.
type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	issuer    *token.Issuer
	handler   *handler.Handler
}

// New creates a new API server wired to the given database.
func New(cfg *config.Config, db *database.Client) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	uploader, err := cloudinary.New(cfg.Cloudinary)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}

	issuer := token.NewIssuer(cfg.Auth)
	h := handler.New(auth.New(db), issuer, photo.New(db, uploader), db)

	return &Server{
		cfg:       cfg,
		ginEngine: gin.Default(),
		issuer:    issuer,
		handler:   h,
	}, nil
}

func (s *Server) setupRoutes() {
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))

	api := s.ginEngine.Group("/api")
	api.POST("/auth/register", s.handler.Register)
	api.POST("/auth/login", s.handler.Login)

	users := api.Group("/users")
	users.GET("/:userId", s.handler.GetUser)

	photos := users.Group("/:userId/photos")
	photos.Use(s.requireAuth())
	photos.POST("", s.handler.AddPhoto)
	photos.GET("/:id", s.handler.GetPhoto)
}

// requireAuth verifies the bearer token and stores the caller's identity on
// the request context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := s.issuer.Parse(tokenString)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set("user_id", userID)
		c.Set("username", claims.Name)
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	s.setupRoutes()

	return s.ginEngine.Run(s.cfg.Listen)
}
