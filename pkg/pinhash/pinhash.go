package pinhash

import "golang.org/x/crypto/bcrypt"

// Hash hashes a plain PIN using bcrypt.
func Hash(pin string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	return string(bytes), err
}

// Check compares a plain PIN with a stored hash.
func Check(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
