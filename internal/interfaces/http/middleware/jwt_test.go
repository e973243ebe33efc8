package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/infrastructure/auth"
	"github.com/estatehub/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
	})
}

func newTestTokenPair(t *testing.T, jwtService *auth.JWTService) (*auth.TokenPair, auth.GenerateTokenInput) {
	t.Helper()
	input := auth.GenerateTokenInput{
		UserID:   uuid.New(),
		Email:    "agent@example.com",
		AgencyID: uuid.New(),
		MemberID: uuid.New(),
		Role:     string(agency.RoleAgent),
	}
	pair, err := jwtService.GenerateTokenPair(input)
	require.NoError(t, err)
	return pair, input
}

func serveWithToken(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// failingBlacklist reports an outage on every lookup
type failingBlacklist struct{ auth.TokenBlacklist }

func (failingBlacklist) IsBlacklisted(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func (failingBlacklist) IsUserTokenInvalidated(context.Context, string, time.Time) (bool, error) {
	return false, errors.New("redis down")
}

func TestJWTAuthMiddleware_ValidTokenSetsActor(t *testing.T) {
	jwtService := newTestJWTService()
	pair, input := newTestTokenPair(t, jwtService)

	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService))
	router.GET("/api/v1/leads", func(c *gin.Context) {
		actor, ok := GetActor(c)
		require.True(t, ok)
		assert.Equal(t, input.UserID, actor.UserID)
		assert.Equal(t, input.AgencyID, actor.AgencyID)
		assert.Equal(t, input.MemberID, actor.MemberID)
		assert.Equal(t, agency.RoleAgent, actor.Role)
		assert.NotNil(t, GetJWTClaims(c))
		c.Status(http.StatusOK)
	})

	rec := serveWithToken(router, "/api/v1/leads", pair.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	jwtService := newTestJWTService()
	pair, _ := newTestTokenPair(t, jwtService)

	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService))
	router.GET("/api/v1/leads", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("missing header", func(t *testing.T) {
		rec := serveWithToken(router, "/api/v1/leads", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"TOKEN_INVALID"`)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token used as access token", func(t *testing.T) {
		rec := serveWithToken(router, "/api/v1/leads", pair.RefreshToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage", func(t *testing.T) {
		rec := serveWithToken(router, "/api/v1/leads", "not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	router := gin.New()
	router.Use(JWTAuthMiddleware(newTestJWTService()))
	router.GET("/api/v1/marketplace/properties", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serveWithToken(router, "/api/v1/marketplace/properties", "").Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthMiddleware_Blacklist(t *testing.T) {
	jwtService := newTestJWTService()

	newRouter := func(bl auth.TokenBlacklist) *gin.Engine {
		cfg := DefaultJWTConfig(jwtService)
		cfg.TokenBlacklist = bl
		router := gin.New()
		router.Use(JWTAuthMiddlewareWithConfig(cfg))
		router.GET("/api/v1/tasks", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	t.Run("revoked jti", func(t *testing.T) {
		pair, _ := newTestTokenPair(t, jwtService)
		claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)

		bl := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, bl.AddToBlacklist(context.Background(), claims.ID, time.Minute))

		rec := serveWithToken(newRouter(bl), "/api/v1/tasks", pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"TOKEN_REVOKED"`)
	})

	t.Run("clean token passes", func(t *testing.T) {
		pair, _ := newTestTokenPair(t, jwtService)
		rec := serveWithToken(newRouter(auth.NewInMemoryTokenBlacklist()), "/api/v1/tasks", pair.AccessToken)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("lookup failure fails closed", func(t *testing.T) {
		pair, _ := newTestTokenPair(t, jwtService)
		rec := serveWithToken(newRouter(failingBlacklist{}), "/api/v1/tasks", pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestActorFromClaims(t *testing.T) {
	t.Run("user without membership", func(t *testing.T) {
		userID := uuid.New()
		actor, err := ActorFromClaims(&auth.Claims{UserID: userID.String()})
		require.NoError(t, err)
		assert.Equal(t, userID, actor.UserID)
		assert.False(t, actor.HasAgency())
	})

	t.Run("bad role", func(t *testing.T) {
		_, err := ActorFromClaims(&auth.Claims{
			UserID:   uuid.NewString(),
			AgencyID: uuid.NewString(),
			MemberID: uuid.NewString(),
			Role:     "EMPEROR",
		})
		assert.Error(t, err)
	})

	t.Run("bad user id", func(t *testing.T) {
		_, err := ActorFromClaims(&auth.Claims{UserID: "nope"})
		assert.Error(t, err)
	})
}

func TestOptionalJWTAuthMiddleware(t *testing.T) {
	jwtService := newTestJWTService()
	pair, input := newTestTokenPair(t, jwtService)

	router := gin.New()
	router.Use(OptionalJWTAuthMiddleware(jwtService))
	router.GET("/open", func(c *gin.Context) {
		actor, ok := GetActor(c)
		if ok {
			c.String(http.StatusOK, actor.UserID.String())
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	assert.Equal(t, "anonymous", serveWithToken(router, "/open", "").Body.String())
	assert.Equal(t, "anonymous", serveWithToken(router, "/open", "broken").Body.String())
	assert.Equal(t, input.UserID.String(), serveWithToken(router, "/open", pair.AccessToken).Body.String())
}
