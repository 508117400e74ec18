package userstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
)

var (
	// ErrUserNotFound indicates no user exists with the given ID or login.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateID indicates an Add with an ID that is already taken.
	ErrDuplicateID = errors.New("user id already exists")

	// ErrDuplicateLogin indicates an Add or Update that would make a login
	// non-unique.
	ErrDuplicateLogin = errors.New("login already taken")
)

// Repository stores users. Logins and IDs are unique.
type Repository interface {
	GetAll() ([]User, error)
	GetByID(id int) (*User, error)
	GetByLogin(login string) (*User, error)
	Add(user User) error
	Update(user User) error
	Delete(id int) error
}

// FileRepository is a Repository backed by a JSON file. The full user list is
// loaded at construction and rewritten on every mutation.
type FileRepository struct {
	path string

	mu    sync.Mutex
	users []User
}

var _ Repository = (*FileRepository)(nil)

// NewFileRepository opens the repository at path, loading existing users.
// A missing or empty file starts an empty repository; a file that exists but
// does not parse is an error.
func NewFileRepository(path string) (*FileRepository, error) {
	r := &FileRepository{path: path}
	if err := r.load(); err != nil {
		return nil, fmt.Errorf("load users from %s: %w", path, err)
	}
	return r, nil
}

func (r *FileRepository) load() error {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, &r.users)
}

// save must be called with r.mu held.
func (r *FileRepository) save() error {
	data, err := json.MarshalIndent(r.users, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o644)
}

// GetAll returns all users sorted by name.
func (r *FileRepository) GetAll() ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]User, len(r.users))
	copy(users, r.users)
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (r *FileRepository) GetByID(id int) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("id %d: %w", id, ErrUserNotFound)
}

func (r *FileRepository) GetByLogin(login string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Login == login {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("login %q: %w", login, ErrUserNotFound)
}

// Add stores a new user. Both the ID and the login must be unused.
func (r *FileRepository) Add(user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == user.ID {
			return fmt.Errorf("id %d: %w", user.ID, ErrDuplicateID)
		}
		if u.Login == user.Login {
			return fmt.Errorf("login %q: %w", user.Login, ErrDuplicateLogin)
		}
	}

	r.users = append(r.users, user)
	return r.save()
}

// Update replaces the stored user with the same ID. Changing the login to one
// held by a different user is rejected.
func (r *FileRepository) Update(user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Login == user.Login && u.ID != user.ID {
			return fmt.Errorf("login %q: %w", user.Login, ErrDuplicateLogin)
		}
	}

	for i, u := range r.users {
		if u.ID == user.ID {
			r.users[i] = user
			return r.save()
		}
	}
	return fmt.Errorf("id %d: %w", user.ID, ErrUserNotFound)
}

// Delete removes the user with the given ID. Deleting an absent ID is a
// no-op.
func (r *FileRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return r.save()
		}
	}
	return nil
}
