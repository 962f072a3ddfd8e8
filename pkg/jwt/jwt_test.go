package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/gohornet/escrow/pkg/jwt"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestNewAuth(t *testing.T) {
	_, err := jwt.NewAuth("", time.Hour, testSecret, nil)
	require.Error(t, err)

	_, err = jwt.NewAuth("escrow", time.Hour, []byte("short"), nil)
	require.Error(t, err)

	auth, err := jwt.NewAuth("escrow", time.Hour, testSecret, nil)
	require.NoError(t, err)

	_, err = auth.IssueJWT("")
	require.Error(t, err)
}

func TestIssueAndVerifyJWT(t *testing.T) {
	auth, err := jwt.NewAuth("escrow", time.Hour, testSecret, nil)
	require.NoError(t, err)

	token, err := auth.IssueJWT("atoi1subject")
	require.NoError(t, err)

	require.True(t, auth.VerifyJWT(token, func(claims *jwt.AuthClaims) bool {
		return claims.VerifySubject("atoi1subject")
	}))
	require.False(t, auth.VerifyJWT(token, func(claims *jwt.AuthClaims) bool {
		return claims.VerifySubject("atoi1other")
	}))
	require.False(t, auth.VerifyJWT(token+"x", nil))

	// other issuer and other secret
	other, err := jwt.NewAuth("other", time.Hour, testSecret, nil)
	require.NoError(t, err)
	require.False(t, other.VerifyJWT(token, nil))

	other, err = jwt.NewAuth("escrow", time.Hour, []byte("fedcba9876543210fedcba9876543210"), nil)
	require.NoError(t, err)
	require.False(t, other.VerifyJWT(token, nil))
}

func TestExpiredJWT(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	auth, err := jwt.NewAuth("escrow", time.Hour, testSecret, func() time.Time { return issued })
	require.NoError(t, err)

	token, err := auth.IssueJWT("atoi1subject")
	require.NoError(t, err)
	require.False(t, auth.VerifyJWT(token, nil))
}

func TestMiddleware(t *testing.T) {
	auth, err := jwt.NewAuth("escrow", time.Hour, testSecret, nil)
	require.NoError(t, err)

	e := echo.New()
	e.Use(auth.Middleware(func(c echo.Context) bool {
		return c.Path() == "/public"
	}, nil))

	e.GET("/public", func(c echo.Context) error {
		return c.String(http.StatusOK, "public")
	})
	e.GET("/private", func(c echo.Context) error {
		subject, err := jwt.SubjectFromContext(c)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, subject)
	})

	serve := func(path string, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := serve("/public", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve("/private", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve("/private", "invalid")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := auth.IssueJWT("atoi1subject")
	require.NoError(t, err)

	rec = serve("/private", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "atoi1subject", rec.Body.String())
}
