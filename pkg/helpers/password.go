package helpers

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt cost factor used for every stored credential.
const PasswordCost = bcrypt.DefaultCost

// PasswordMaxBytes is the longest input bcrypt accepts.
const PasswordMaxBytes = 72

var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// HashPassword hashes the plain text password using bcrypt with a random salt
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
