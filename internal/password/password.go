package password

import "golang.org/x/crypto/bcrypt"

// Cost is fixed; changing it only affects hashes created afterwards.
const Cost = 10

// Hash returns a salted bcrypt hash of plain.
func Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares plain against hash in constant time.
func Verify(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
