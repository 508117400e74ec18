package userstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredentials indicates a sign-in with an unknown login or a wrong
// password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid login or password")

// sessionTTL bounds how long a persisted session survives a restart.
const sessionTTL = 24 * time.Hour

// AuthService signs users in against a Repository and persists the session
// as a signed JWT in a file, so a new AuthService over the same file restores
// the signed-in user.
type AuthService struct {
	sessionPath string
	repo        Repository
	secret      []byte

	mu      sync.Mutex
	current *User
}

// NewAuthService creates the service and restores any valid persisted
// session. A missing, expired, or tampered session file simply results in an
// unauthorized state.
func NewAuthService(sessionPath string, repo Repository, secret []byte) *AuthService {
	s := &AuthService{
		sessionPath: sessionPath,
		repo:        repo,
		secret:      secret,
	}
	s.restoreSession()
	return s
}

func (s *AuthService) restoreSession() {
	data, err := os.ReadFile(s.sessionPath)
	if err != nil {
		return
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(string(data), claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return
	}

	user, err := s.repo.GetByID(id)
	if err != nil {
		return
	}
	s.current = user
}

// SignIn authenticates the login/password pair and persists the session.
func (s *AuthService) SignIn(login, password string) error {
	user, err := s.repo.GetByLogin(login)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if !user.CheckPassword(password) {
		return ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.Itoa(user.ID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}
	if err := os.WriteFile(s.sessionPath, []byte(signed), 0o600); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.current = user
	s.mu.Unlock()
	return nil
}

// SignOut clears the current user and removes the session file.
func (s *AuthService) SignOut() error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := os.Remove(s.sessionPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// IsAuthorized reports whether a user is currently signed in.
func (s *AuthService) IsAuthorized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// CurrentUser returns the signed-in user, or nil.
func (s *AuthService) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
