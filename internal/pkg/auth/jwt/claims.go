package jwt

import "github.com/golang-jwt/jwt"

// Payload is the claim set of a phonebook identity token.
type Payload struct {
	jwt.StandardClaims

	// ID is the user's UUID in string form.
	ID string `json:"id"`

	Email string `json:"email"`
	Name  string `json:"name"`
}
