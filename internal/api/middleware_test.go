package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CarlJazper/PSPWEB/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, secret string, role domain.Role, expiresAt time.Time) string {
	t.Helper()
	claims := jwtClaims{
		UserID: "64f000000000000000000001",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "pspweb",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newAuthTestRouter(roles ...domain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/", AuthMiddleware(testSecret))
	if len(roles) > 0 {
		group.Use(RoleMiddleware(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		userID, _ := getUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID})
	})
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	router := newAuthTestRouter()
	token := signTestToken(t, testSecret, domain.RoleClient, time.Now().Add(time.Hour))

	w := doRequest(router, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareRejectsMissingOrBadHeader(t *testing.T) {
	router := newAuthTestRouter()

	if w := doRequest(router, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no header: status = %d, want 401", w.Code)
	}
	if w := doRequest(router, "Token abc"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad scheme: status = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	router := newAuthTestRouter()
	token := signTestToken(t, testSecret, domain.RoleClient, time.Now().Add(-time.Minute))

	w := doRequest(router, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	router := newAuthTestRouter()
	token := signTestToken(t, "other-secret", domain.RoleClient, time.Now().Add(time.Hour))

	w := doRequest(router, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRoleMiddlewareEnforcesRole(t *testing.T) {
	router := newAuthTestRouter(domain.RoleAdmin)

	clientToken := signTestToken(t, testSecret, domain.RoleClient, time.Now().Add(time.Hour))
	if w := doRequest(router, "Bearer "+clientToken); w.Code != http.StatusForbidden {
		t.Errorf("client: status = %d, want 403", w.Code)
	}

	adminToken := signTestToken(t, testSecret, domain.RoleAdmin, time.Now().Add(time.Hour))
	if w := doRequest(router, "Bearer "+adminToken); w.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", w.Code)
	}
}
