package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthenticated is returned when credentials are missing or rejected.
var ErrUnauthenticated = errors.New("unauthenticated")

// Principal is the verified caller of a request.
type Principal struct {
	ID   string
	Role string
	Name string
}

// Credentials carry whatever the client presented, currently a bearer token.
type Credentials struct {
	BearerToken string
}

// Verifier turns credentials into a principal.
type Verifier interface {
	Verify(ctx context.Context, creds Credentials) (Principal, error)
}

// JWTVerifier accepts HS256 access tokens issued by Issue.
type JWTVerifier struct {
	SigningKey string
	Issuer     string
}

// Verify parses and checks the bearer token.
func (v JWTVerifier) Verify(_ context.Context, creds Credentials) (Principal, error) {
	if strings.TrimSpace(creds.BearerToken) == "" {
		return Principal{}, fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}
	claims, err := Parse(creds.BearerToken, v.SigningKey, v.Issuer)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return Principal{ID: claims.Subject, Role: claims.Role, Name: claims.Name}, nil
}

// StaticVerifier treats every request as the same principal. Development only.
type StaticVerifier struct {
	Principal Principal
}

// DevPrincipal is the fixed teacher used by StaticVerifier in local setups.
var DevPrincipal = Principal{ID: "user_t001", Role: "teacher", Name: "Professor Jane"}

// Verify ignores the credentials.
func (v StaticVerifier) Verify(context.Context, Credentials) (Principal, error) {
	return v.Principal, nil
}
