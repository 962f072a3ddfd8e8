package jwt

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
)

const (
	contextKeyJWT = "jwt"
)

var (
	ErrJWTInvalidClaims = echo.NewHTTPError(http.StatusUnauthorized, "invalid jwt claims")
	ErrJWTMissing       = echo.NewHTTPError(http.StatusUnauthorized, "missing jwt")
)

type Auth struct {
	issuer         string
	sessionTimeout time.Duration
	secret         []byte
	clock          func() time.Time
}

// NewAuth creates an Auth that issues and verifies HMAC signed tokens.
// The issuer is used as issuer and audience of every token.
func NewAuth(issuer string, sessionTimeout time.Duration, secret []byte, clock func() time.Time) (*Auth, error) {

	if len(issuer) == 0 {
		return nil, errors.New("issuer must not be empty")
	}

	if len(secret) < 32 {
		return nil, errors.New("secret must be at least 32 bytes long")
	}

	if clock == nil {
		clock = time.Now
	}

	return &Auth{
		issuer:         issuer,
		sessionTimeout: sessionTimeout,
		secret:         secret,
		clock:          clock,
	}, nil
}

type AuthClaims struct {
	jwt.StandardClaims
}

func (c *AuthClaims) compare(field string, expected string) bool {
	if field == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(field), []byte(expected)) != 0 {
		return true
	}

	return false
}

func (c *AuthClaims) VerifySubject(expected string) bool {
	return c.compare(c.Subject, expected)
}

// Middleware verifies the JWT of every request that is not skipped and stores the claims in the context.
func (j *Auth) Middleware(skipper middleware.Skipper, allow func(c echo.Context, claims *AuthClaims) bool) echo.MiddlewareFunc {

	config := middleware.JWTConfig{
		ContextKey: contextKeyJWT,
		Claims:     &AuthClaims{},
		SigningKey: j.secret,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {

		return func(c echo.Context) error {

			// skip unprotected endpoints
			if skipper(c) {
				return next(c)
			}

			// use the default JWT middleware to verify and extract the JWT
			handler := middleware.JWTWithConfig(config)(func(c echo.Context) error {
				return nil
			})

			// run the JWT middleware
			if err := handler(c); err != nil {
				return err
			}

			token, ok := c.Get(contextKeyJWT).(*jwt.Token)
			if !ok {
				return fmt.Errorf("expected *jwt.Token, got %T", c.Get(contextKeyJWT))
			}

			// validate the signing method we expect
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}

			// read the claims set by the JWT middleware on the context
			claims, ok := token.Claims.(*AuthClaims)

			// do extended claims validation
			if !ok || !claims.VerifyAudience(j.issuer, true) || claims.Subject == "" {
				return ErrJWTInvalidClaims
			}

			if allow != nil && !allow(c, claims) {
				return ErrJWTInvalidClaims
			}

			// go to the next handler
			return next(c)
		}
	}
}

// SubjectFromContext returns the subject of the JWT that was verified by the middleware.
func SubjectFromContext(c echo.Context) (string, error) {
	token, ok := c.Get(contextKeyJWT).(*jwt.Token)
	if !ok {
		return "", ErrJWTMissing
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || claims.Subject == "" {
		return "", ErrJWTInvalidClaims
	}

	return claims.Subject, nil
}

// IssueJWT issues a token for the given subject.
func (j *Auth) IssueJWT(subject string) (string, error) {

	if len(subject) == 0 {
		return "", errors.New("subject must not be empty")
	}

	now := j.clock()

	// Set claims
	stdClaims := jwt.StandardClaims{
		Subject:   subject,
		Issuer:    j.issuer,
		Audience:  j.issuer,
		Id:        fmt.Sprintf("%d", now.UnixNano()),
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
	}

	if j.sessionTimeout > 0 {
		stdClaims.ExpiresAt = now.Add(j.sessionTimeout).Unix()
	}

	claims := &AuthClaims{
		StandardClaims: stdClaims,
	}

	// Create token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// Generate encoded token and send it as response.
	return token.SignedString(j.secret)
}

// VerifyJWT checks the signature, the audience and the expiry of the token.
func (j *Auth) VerifyJWT(token string, allow func(claims *AuthClaims) bool) bool {

	t, err := jwt.ParseWithClaims(token, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		// validate the signing method we expect
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return j.secret, nil
	})
	if err != nil || !t.Valid {
		return false
	}

	claims, ok := t.Claims.(*AuthClaims)
	if !ok || !claims.VerifyAudience(j.issuer, true) {
		return false
	}

	if allow != nil && !allow(claims) {
		return false
	}

	return true
}
