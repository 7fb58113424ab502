package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/emberdating/ember/api/models"
	"github.com/emberdating/ember/auth"
	"github.com/emberdating/ember/database"
	"github.com/emberdating/ember/photo"
	"github.com/emberdating/ember/token"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler serves the Ember HTTP API.
type Handler struct {
	authenticator *auth.Authenticator
	issuer        *token.Issuer
	photos        *photo.Service
	db            *database.Client
}

// New creates a new Handler.
func New(authenticator *auth.Authenticator, issuer *token.Issuer, photos *photo.Service, db *database.Client) *Handler {
	return &Handler{
		authenticator: authenticator,
		issuer:        issuer,
		photos:        photos,
		db:            db,
	}
}

// Register creates a new user account.
func (h *Handler) Register(c *gin.Context) {
	var req models.UserForRegister
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := h.authenticator.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists!"})
			return
		}
		log.Error("registration failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	c.Header("Location", fmt.Sprintf("/api/users/%d", user.ID))
	c.JSON(http.StatusCreated, models.ToUserForDetail(user))
}

// Login verifies credentials and returns a signed token with the user.
func (h *Handler) Login(c *gin.Context) {
	var req models.UserForLogin
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := h.authenticator.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		log.Error("login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}
	if user == nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	signed, err := h.issuer.Issue(user)
	if err != nil {
		log.Error("token issuance failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Token: signed,
		User:  models.ToUserForList(user),
	})
}

// GetUser returns the detailed representation of a user.
func (h *Handler) GetUser(c *gin.Context) {
	userID, err := parseID(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user"})
		return
	}

	c.JSON(http.StatusOK, models.ToUserForDetail(user))
}

// AddPhoto uploads a photo and associates it with the user's profile.
func (h *Handler) AddPhoto(c *gin.Context) {
	userID, err := parseID(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	requestingUserID := c.MustGet("user_id").(uint)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read the image file"})
		return
	}
	defer file.Close() //nolint:errcheck

	created, err := h.photos.AddPhoto(c.Request.Context(), userID, requestingUserID, fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		switch {
		case errors.Is(err, photo.ErrUnauthorized):
			c.Status(http.StatusUnauthorized)
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, photo.ErrUploadFailed), errors.Is(err, database.ErrNoRowsAffected):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not add the photo"})
		default:
			log.Error("failed to add photo", "user", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not add the photo"})
		}
		return
	}

	c.Header("Location", fmt.Sprintf("/api/users/%d/photos/%d", userID, created.ID))
	c.JSON(http.StatusCreated, models.ToPhotoForReturn(created))
}

// GetPhoto returns a single photo by id.
func (h *Handler) GetPhoto(c *gin.Context) {
	photoID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo ID"})
		return
	}

	p, err := h.db.GetPhoto(c.Request.Context(), photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get photo"})
		return
	}

	c.JSON(http.StatusOK, models.ToPhotoForReturn(p))
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return safecast.ToUint(id)
}
