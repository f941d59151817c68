package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUndecodableToken is returned when a credential cannot be read as a
// JWT with a JSON payload.
var ErrUndecodableToken = errors.New("undecodable identity token")

// Profile is the signed-in user as shown on the page.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"image_url"`
}

type googleClaims struct {
	jwt.RegisteredClaims
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

var unverifiedParser = jwt.NewParser()

// Decode reads the payload segment of a Google ID token. The signature is
// NOT verified: the profile is for display only and must never back an
// authorization decision.
func Decode(token string) (Profile, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Profile{}, fmt.Errorf("%w: empty token", ErrUndecodableToken)
	}
	var claims googleClaims
	if _, _, err := unverifiedParser.ParseUnverified(token, &claims); err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrUndecodableToken, err)
	}
	return Profile{
		ID:       claims.Subject,
		Name:     claims.Name,
		Email:    claims.Email,
		ImageURL: claims.Picture,
	}, nil
}
