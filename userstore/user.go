package userstore

import "golang.org/x/crypto/bcrypt"

// User is a stored account. Passwords are kept only as bcrypt hashes; the
// hash is serialized with the user so the repository file is self-contained.
type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Login        string `json:"login"`
	PasswordHash string `json:"password_hash"`
	Email        string `json:"email,omitempty"`
	Address      string `json:"address,omitempty"`
}

// HashPassword hashes a plaintext password for storage in User.PasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored
// hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
