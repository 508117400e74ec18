// Command userd is a small user-management HTTP service demonstrating
// container-driven wiring: the repository is a singleton, the auth service
// and controllers are scoped per request, and the chi router resolves each
// controller from the request scope.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cradlekit/cradle"
	"github.com/cradlekit/cradle/chix"
	"github.com/cradlekit/cradle/pipelog"
	"github.com/cradlekit/cradle/userstore"
)

func main() {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	container := cradle.New()
	defer container.Close()

	if err := buildContainer(container, logger); err != nil {
		logger.Fatal("container wiring failed", zap.Error(err))
	}

	r := chi.NewRouter()
	r.Use(chix.ScopeMiddleware(container))

	r.Post("/signin", chix.Handle((*authController).SignIn))
	r.Post("/signout", chix.Handle((*authController).SignOut))
	r.Get("/me", chix.Handle((*authController).Me))

	r.Get("/users", chix.Handle((*userController).List))
	r.Post("/users", chix.Handle((*userController).Create))
	r.Get("/users/{id}", chix.Handle((*userController).Get))
	r.Delete("/users/{id}", chix.Handle((*userController).Delete))

	addr := envOr("USERD_ADDR", ":8080")
	logger.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func buildContainer(c *cradle.Container, logger *zap.Logger) error {
	usersPath := envOr("USERD_USERS_FILE", "users.json")
	sessionPath := envOr("USERD_SESSION_FILE", "session.jwt")
	secret := []byte(envOr("USERD_SESSION_SECRET", "dev-secret"))

	if err := c.RegisterInstance(logger); err != nil {
		return err
	}
	if err := c.RegisterSingleton(userstore.NewFileRepository,
		cradle.As((*userstore.Repository)(nil)),
		cradle.WithParam(0, usersPath)); err != nil {
		return err
	}
	if err := c.RegisterScoped(userstore.NewAuthService,
		cradle.WithParam(0, sessionPath),
		cradle.WithParam(2, secret)); err != nil {
		return err
	}
	if err := c.RegisterSingleton(newAuditPipeline); err != nil {
		return err
	}
	if err := c.RegisterScoped(newAuthController); err != nil {
		return err
	}
	return c.RegisterScoped(newUserController)
}

// newAuditPipeline builds the sign-in/sign-out audit trail: messages tagged
// "auth:" fan out to the shared logger.
func newAuditPipeline(logger *zap.Logger) *pipelog.Pipeline {
	return pipelog.New(
		[]pipelog.Filter{pipelog.NewSubstringFilter("auth:")},
		[]pipelog.Handler{pipelog.NewZapHandler(logger)},
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// userView is the wire representation of a user; the password hash never
// leaves the service.
type userView struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Login   string `json:"login"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

func viewOf(u userstore.User) userView {
	return userView{ID: u.ID, Name: u.Name, Login: u.Login, Email: u.Email, Address: u.Address}
}

type userController struct {
	repo   userstore.Repository
	logger *zap.Logger
}

func newUserController(repo userstore.Repository, logger *zap.Logger) *userController {
	return &userController{repo: repo, logger: logger}
}

func (uc *userController) List(w http.ResponseWriter, r *http.Request) {
	users, err := uc.repo.GetAll()
	if err != nil {
		uc.fail(w, err)
		return
	}

	views := make([]userView, len(users))
	for i, u := range users {
		views[i] = viewOf(u)
	}
	respondJSON(w, http.StatusOK, views)
}

func (uc *userController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := uc.repo.GetByID(id)
	if errors.Is(err, userstore.ErrUserNotFound) {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		uc.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(*user))
}

func (uc *userController) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Login    string `json:"login"`
		Password string `json:"password"`
		Email    string `json:"email"`
		Address  string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Login == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "login and password are required")
		return
	}

	hash, err := userstore.HashPassword(req.Password)
	if err != nil {
		uc.fail(w, err)
		return
	}

	user := userstore.User{
		ID:           req.ID,
		Name:         req.Name,
		Login:        req.Login,
		PasswordHash: hash,
		Email:        req.Email,
		Address:      req.Address,
	}
	if err := uc.repo.Add(user); err != nil {
		if errors.Is(err, userstore.ErrDuplicateID) || errors.Is(err, userstore.ErrDuplicateLogin) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		uc.fail(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, viewOf(user))
}

func (uc *userController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := uc.repo.Delete(id); err != nil {
		uc.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (uc *userController) fail(w http.ResponseWriter, err error) {
	uc.logger.Error("user request failed", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal error")
}

type authController struct {
	auth   *userstore.AuthService
	audit  *pipelog.Pipeline
	logger *zap.Logger
}

func newAuthController(auth *userstore.AuthService, audit *pipelog.Pipeline, logger *zap.Logger) *authController {
	return &authController{auth: auth, audit: audit, logger: logger}
}

func (ac *authController) auditLog(message string) {
	if err := ac.audit.Log(message); err != nil {
		ac.logger.Warn("audit log failed", zap.Error(err))
	}
}

func (ac *authController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := ac.auth.SignIn(req.Login, req.Password); err != nil {
		if errors.Is(err, userstore.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "invalid login or password")
			return
		}
		ac.logger.Error("sign-in failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ac.auditLog(fmt.Sprintf("auth: %s signed in", req.Login))
	respondJSON(w, http.StatusOK, viewOf(*ac.auth.CurrentUser()))
}

func (ac *authController) SignOut(w http.ResponseWriter, r *http.Request) {
	user := ac.auth.CurrentUser()

	if err := ac.auth.SignOut(); err != nil {
		ac.logger.Error("sign-out failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if user != nil {
		ac.auditLog(fmt.Sprintf("auth: %s signed out", user.Login))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *authController) Me(w http.ResponseWriter, r *http.Request) {
	user := ac.auth.CurrentUser()
	if user == nil {
		respondError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	respondJSON(w, http.StatusOK, viewOf(*user))
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
