package utils

import "golang.org/x/crypto/bcrypt" // Password hashing

// dummyHash is compared against when the user does not exist, so a failed
// login costs the same whether or not the username is known.
var dummyHash = mustHash("account-service-timing-guard")

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
// Hashes in any other format never match.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// BurnPasswordCheck performs a comparison whose result is discarded
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// IsBcryptHash reports whether hash carries a bcrypt prefix and cost
func IsBcryptHash(hash string) bool {
	_, err := bcrypt.Cost([]byte(hash))
	return err == nil
}

func mustHash(secret string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
}
