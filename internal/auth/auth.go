// Package auth contains handlers, services and models used to manage authentication
// and authorization.
package auth

import "golang.org/x/crypto/bcrypt"

// EncryptPassword hashes a plain password with bcrypt.
func EncryptPassword(pass string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePasswords checks a plain password against its stored bcrypt hash.
func ComparePasswords(hashedPass, plainPass string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPass), []byte(plainPass)) == nil
}
