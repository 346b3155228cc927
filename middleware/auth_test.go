package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/mill-ops-console/config"
	"github.com/kendall-kelly/mill-ops-console/models"
	"github.com/kendall-kelly/mill-ops-console/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCustomClaims_HasScope(t *testing.T) {
	tests := []struct {
		name          string
		scope         string
		expectedScope string
		want          bool
	}{
		{
			name:          "has exact scope",
			scope:         "read:inventory",
			expectedScope: "read:inventory",
			want:          true,
		},
		{
			name:          "has scope in multiple scopes",
			scope:         "read:inventory write:inventory manage:finance",
			expectedScope: "write:inventory",
			want:          true,
		},
		{
			name:          "does not have scope",
			scope:         "read:inventory",
			expectedScope: "write:inventory",
			want:          false,
		},
		{
			name:          "empty scope",
			scope:         "",
			expectedScope: "read:inventory",
			want:          false,
		},
		{
			name:          "partial match should not work",
			scope:         "read:inventory",
			expectedScope: "read",
			want:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := CustomClaims{Scope: tt.scope}
			got := claims.HasScope(tt.expectedScope)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantID    string
		wantErr   bool
	}{
		{
			name: "successfully extracts user ID",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", "auth0|123456")
			},
			wantID:  "auth0|123456",
			wantErr: false,
		},
		{
			name: "user ID not found in context",
			setupFunc: func(c *gin.Context) {
				// Don't set user_id
			},
			wantID:  "",
			wantErr: true,
		},
		{
			name: "user ID is not a string",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", 12345) // Set as int instead of string
			},
			wantID:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.setupFunc(c)

			gotID, err := GetUserID(c)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, gotID)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, gotID)
			}
		})
	}
}

func TestGetClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantErr   bool
	}{
		{
			name: "successfully extracts claims",
			setupFunc: func(c *gin.Context) {
				claims := &validator.ValidatedClaims{
					RegisteredClaims: validator.RegisteredClaims{
						Issuer:  "https://test.auth0.com/",
						Subject: "auth0|123456",
					},
					CustomClaims: &CustomClaims{
						Scope: "read:inventory",
					},
				}
				c.Set("validated_claims", claims)
			},
			wantErr: false,
		},
		{
			name: "claims not found in context",
			setupFunc: func(c *gin.Context) {
				// Don't set validated_claims
			},
			wantErr: true,
		},
		{
			name: "claims are not the expected type",
			setupFunc: func(c *gin.Context) {
				c.Set("validated_claims", "invalid")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.setupFunc(c)

			claims, err := GetClaims(c)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, claims)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, claims)
			}
		})
	}
}

func TestRequireScope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		requiredScope  string
		setupFunc      func(*gin.Context)
		wantStatusCode int
		wantAborted    bool
	}{
		{
			name:          "has required scope",
			requiredScope: "read:inventory",
			setupFunc: func(c *gin.Context) {
				claims := &validator.ValidatedClaims{
					CustomClaims: &CustomClaims{
						Scope: "read:inventory write:inventory",
					},
				}
				c.Set("validated_claims", claims)
			},
			wantStatusCode: 0, // Should not write status, continues to next handler
			wantAborted:    false,
		},
		{
			name:          "missing required scope",
			requiredScope: "manage:finance",
			setupFunc: func(c *gin.Context) {
				claims := &validator.ValidatedClaims{
					CustomClaims: &CustomClaims{
						Scope: "read:inventory write:inventory",
					},
				}
				c.Set("validated_claims", claims)
			},
			wantStatusCode: http.StatusForbidden,
			wantAborted:    true,
		},
		{
			name:          "claims without scope data",
			requiredScope: "read:inventory",
			setupFunc: func(c *gin.Context) {
				c.Set("validated_claims", &validator.ValidatedClaims{})
			},
			wantStatusCode: http.StatusForbidden,
			wantAborted:    true,
		},
		{
			name:          "claims not in context",
			requiredScope: "read:inventory",
			setupFunc: func(c *gin.Context) {
				// Don't set validated_claims
			},
			wantStatusCode: http.StatusUnauthorized,
			wantAborted:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

			tt.setupFunc(c)

			handler := RequireScope(tt.requiredScope)
			handler(c)

			if tt.wantAborted {
				assert.True(t, c.IsAborted())
				assert.Equal(t, tt.wantStatusCode, w.Code)
			} else {
				assert.False(t, c.IsAborted())
			}
		})
	}
}

func TestAuthError(t *testing.T) {
	err := &AuthError{
		Code:    "TEST_ERROR",
		Message: "This is a test error",
	}

	assert.Equal(t, "This is a test error", err.Error())
}

type fakeResolver struct {
	user       *models.User
	err        error
	gotSubject string
	gotToken   string
}

func (f *fakeResolver) ResolveActor(ctx context.Context, auth0ID, accessToken string) (*models.User, error) {
	f.gotSubject = auth0ID
	f.gotToken = accessToken
	return f.user, f.err
}

func TestActingUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		resolver   *fakeResolver
		setupFunc  func(*gin.Context)
		wantStatus int
		wantActor  *uint
	}{
		{
			name:     "attaches the resolved user",
			resolver: &fakeResolver{user: &models.User{ID: 7}},
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", "auth0|7")
				c.Set("access_token", "token-7")
			},
			wantStatus: http.StatusOK,
			wantActor:  func() *uint { id := uint(7); return &id }(),
		},
		{
			name:       "missing subject",
			resolver:   &fakeResolver{},
			setupFunc:  func(c *gin.Context) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:     "resolver failure",
			resolver: &fakeResolver{err: errors.New("db down")},
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", "auth0|7")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotActor *uint
			router := gin.New()
			router.Use(func(c *gin.Context) {
				tt.setupFunc(c)
				c.Next()
			})
			router.Use(ActingUser(tt.resolver))
			router.GET("/", func(c *gin.Context) {
				gotActor = services.ActorFromContext(c.Request.Context())
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantActor, gotActor)
		})
	}
}

func TestActingUserPassesAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := &fakeResolver{user: &models.User{ID: 1}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("user_id", "auth0|1")
	c.Set("access_token", "abc")

	ActingUser(resolver)(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, "auth0|1", resolver.gotSubject)
	assert.Equal(t, "abc", resolver.gotToken)
}

func TestEnsureValidTokenRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler, err := EnsureValidToken(&config.Config{Auth0Domain: "mill.example.auth0.com", Auth0Audience: "mill-ops"}, zap.NewNop())
	require.NoError(t, err)

	router := gin.New()
	router.Use(handler)
	reached := false
	router.GET("/", func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, reached, "handlers after a rejected token must not run")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`, w.Body.String())
}
