package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emberdating/ember/api/models"
	"github.com/emberdating/ember/config"
	"github.com/emberdating/ember/database"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cloudinaryHandler http.HandlerFunc) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if cloudinaryHandler == nil {
		cloudinaryHandler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"public_id":"abc123","secure_url":"https://res.cloudinary.com/testcloud/abc123.jpg"}`)
		}
	}
	imageHost := httptest.NewServer(cloudinaryHandler)
	t.Cleanup(imageHost.Close)

	cfg := &config.Config{
		Listen: "127.0.0.1:0",
		Auth:   &config.AuthConfig{TokenSecret: "test-secret", TokenTTL: 24},
		Cloudinary: &config.CloudinaryConfig{
			CloudName: "testcloud",
			APIKey:    "key",
			APISecret: "secret",
			UploadURL: imageHost.URL,
		},
	}

	db, err := database.New(t.TempDir())
	require.NoError(t, err)

	server, err := New(cfg, db)
	require.NoError(t, err)
	server.setupRoutes()
	return server
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.ginEngine.ServeHTTP(w, req)
	return w
}

func doUpload(t *testing.T, server *Server, userID uint, token string, imageData []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "me.jpg")
	require.NoError(t, err)
	_, err = part.Write(imageData)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", fmt.Sprintf("/api/users/%d/photos", userID), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	server.ginEngine.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, server *Server, username, password string) models.UserForDetail {
	t.Helper()
	w := doJSON(t, server, "POST", "/api/auth/register", models.UserForRegister{Username: username, Password: password})
	require.Equal(t, http.StatusCreated, w.Code)

	var user models.UserForDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	return user
}

func loginUser(t *testing.T, server *Server, username, password string) models.LoginResponse {
	t.Helper()
	w := doJSON(t, server, "POST", "/api/auth/login", models.UserForLogin{Username: username, Password: password})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRegister(t *testing.T) {
	server := newTestServer(t, nil)

	w := doJSON(t, server, "POST", "/api/auth/register", models.UserForRegister{Username: "Alice", Password: "secret123"})
	require.Equal(t, http.StatusCreated, w.Code)

	var user models.UserForDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "alice", user.Username)
	assert.NotZero(t, user.ID)
	assert.Equal(t, fmt.Sprintf("/api/users/%d", user.ID), w.Header().Get("Location"))

	// The credential fields never appear in the response.
	assert.NotContains(t, w.Body.String(), "PasswordHash")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	server := newTestServer(t, nil)
	registerUser(t, server, "Alice", "secret123")

	w := doJSON(t, server, "POST", "/api/auth/register", models.UserForRegister{Username: "alice", Password: "anything"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Username already exists!")
}

func TestRegisterMissingFields(t *testing.T) {
	server := newTestServer(t, nil)

	w := doJSON(t, server, "POST", "/api/auth/register", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	server := newTestServer(t, nil)
	registered := registerUser(t, server, "Alice", "secret123")

	resp := loginUser(t, server, "Alice", "secret123")
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, registered.ID, resp.User.ID)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestLoginBadCredentials(t *testing.T) {
	server := newTestServer(t, nil)
	registerUser(t, server, "Alice", "secret123")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "Alice", password: "wrong"},
		{name: "unknown user", username: "mallory", password: "secret123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, server, "POST", "/api/auth/login", models.UserForLogin{Username: tt.username, Password: tt.password})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Empty(t, w.Body.String())
		})
	}
}

func TestAddPhoto(t *testing.T) {
	server := newTestServer(t, nil)
	user := registerUser(t, server, "Alice", "secret123")
	login := loginUser(t, server, "Alice", "secret123")

	w := doUpload(t, server, user.ID, login.Token, []byte("image-bytes"))
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.PhotoForReturn
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.IsMain, "first photo must be flagged main")
	assert.Equal(t, "https://res.cloudinary.com/testcloud/abc123.jpg", created.URL)
	assert.Equal(t, fmt.Sprintf("/api/users/%d/photos/%d", user.ID, created.ID), w.Header().Get("Location"))

	// The second photo is not flagged main.
	w = doUpload(t, server, user.ID, login.Token, []byte("more-image-bytes"))
	require.Equal(t, http.StatusCreated, w.Code)

	var second models.PhotoForReturn
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.False(t, second.IsMain)

	// Both photos show up on the user's profile.
	req := httptest.NewRequest("GET", fmt.Sprintf("/api/users/%d", user.ID), nil)
	rec := httptest.NewRecorder()
	server.ginEngine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail models.UserForDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Len(t, detail.Photos, 2)
}

func TestAddPhotoRequiresMatchingToken(t *testing.T) {
	server := newTestServer(t, nil)
	alice := registerUser(t, server, "Alice", "secret123")
	registerUser(t, server, "Bob", "secret456")
	bobLogin := loginUser(t, server, "Bob", "secret456")

	tests := []struct {
		name  string
		token string
	}{
		{name: "no token", token: ""},
		{name: "garbage token", token: "garbage"},
		{name: "other user's token", token: bobLogin.Token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doUpload(t, server, alice.ID, tt.token, []byte("image-bytes"))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	// Nothing was persisted for alice.
	req := httptest.NewRequest("GET", fmt.Sprintf("/api/users/%d", alice.ID), nil)
	rec := httptest.NewRecorder()
	server.ginEngine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail models.UserForDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Empty(t, detail.Photos)
}

func TestAddPhotoUploadFailure(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	user := registerUser(t, server, "Alice", "secret123")
	login := loginUser(t, server, "Alice", "secret123")

	w := doUpload(t, server, user.ID, login.Token, []byte("image-bytes"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Could not add the photo")
}

func TestGetPhoto(t *testing.T) {
	server := newTestServer(t, nil)
	user := registerUser(t, server, "Alice", "secret123")
	login := loginUser(t, server, "Alice", "secret123")

	w := doUpload(t, server, user.ID, login.Token, []byte("image-bytes"))
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest("GET", w.Header().Get("Location"), nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec := httptest.NewRecorder()
	server.ginEngine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.PhotoForReturn
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.IsMain)
}

func TestGetUserNotFound(t *testing.T) {
	server := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/api/users/999", nil)
	rec := httptest.NewRecorder()
	server.ginEngine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
