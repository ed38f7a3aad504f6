package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/auth"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/notifications"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/pkg/logging"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu      sync.Mutex
	actions []notifications.Action
}

func (n *recordingNotifier) Notify(_ uint64, action notifications.Action) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.actions = append(n.actions, action)
}

func (n *recordingNotifier) Actions() []notifications.Action {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifications.Action(nil), n.actions...)
}

type apiTestEnv struct {
	t        testing.TB
	db       *gorm.DB
	router   *gin.Engine
	tokens   *auth.JWTManager
	notifier *recordingNotifier
}

func setupAPITestEnv(t testing.TB) *apiTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := database.NewTestDB(t)
	logger := logging.Discard()
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	notifier := &recordingNotifier{}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authHandler := NewAuthHandler(services.NewAuthService(userRepo, auth.NewBcryptHasher(bcrypt.MinCost), tokens), logger)
	projectHandler := NewProjectHandler(services.NewProjectService(projectRepo, taskRepo), logger)
	taskHandler := NewTaskHandler(services.NewTaskService(taskRepo, projectRepo, userRepo, notifier), logger)

	r := gin.New()
	r.Use(middleware.Identify(tokens))

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.GET("/auth/me", middleware.RequireAuth(), authHandler.Me)

	projects := r.Group("/projects", middleware.RequireAuth())
	projects.POST("/", projectHandler.CreateProject)
	projects.GET("/", projectHandler.ListProjects)
	projects.GET("/:id", middleware.RequireIDParam(), projectHandler.GetProject)
	projects.PATCH("/:id", middleware.RequireIDParam(), projectHandler.UpdateProject)
	projects.DELETE("/:id", middleware.RequireIDParam(), projectHandler.DeleteProject)

	tasks := r.Group("/tasks", middleware.RequireAuth())
	tasks.POST("/", taskHandler.CreateTask)
	tasks.GET("/", taskHandler.ListTasks)
	tasks.GET("/:id", middleware.RequireIDParam(), taskHandler.GetTask)
	tasks.PATCH("/:id", middleware.RequireIDParam(), taskHandler.UpdateTask)
	tasks.DELETE("/:id", middleware.RequireIDParam(), taskHandler.DeleteTask)

	return &apiTestEnv{
		t:        t,
		db:       db,
		router:   r,
		tokens:   tokens,
		notifier: notifier,
	}
}

// do sends a request. body may be nil, a raw string, or a value to encode.
func (e *apiTestEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signup registers a user through the API and returns a token and the user
func (e *apiTestEnv) signup(username string) (string, dto.UserDTO) {
	e.t.Helper()

	w := e.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.LoginResponse
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken, resp.User
}

func (e *apiTestEnv) createProject(token, name string) dto.ProjectDTO {
	e.t.Helper()

	w := e.do(http.MethodPost, "/projects/", token, map[string]any{"name": name})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	var project dto.ProjectDTO
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &project))
	return project
}

func (e *apiTestEnv) createTask(token string, body map[string]any) dto.TaskDTO {
	e.t.Helper()

	w := e.do(http.MethodPost, "/tasks/", token, body)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	var task dto.TaskDTO
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &task))
	return task
}

func decode[T any](t testing.TB, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
