package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/songyu/bugtrack/internal/models"
	"github.com/songyu/bugtrack/internal/services"
	"github.com/songyu/bugtrack/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")
}

func newTestRouter(action string) *gin.Engine {
	r := gin.New()
	r.GET("/protected", AuthRequired(), RequirePermission(action), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": GetRole(c)})
	})
	return r
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r := newTestRouter(services.ActionViewBugs)

	t.Run("missing header", func(t *testing.T) {
		if w := doRequest(r, ""); w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if w := doRequest(r, "not-a-jwt"); w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := utils.GenerateToken(1, "tester", models.RoleTester, 1)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		if w := doRequest(r, token); w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestRequirePermission(t *testing.T) {
	r := newTestRouter(services.ActionDeleteBug)

	guestToken, err := utils.GenerateToken(2, "guest", models.RoleGuest, 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if w := doRequest(r, guestToken); w.Code != http.StatusForbidden {
		t.Errorf("guest deleting bugs: expected 403, got %d", w.Code)
	}

	adminToken, err := utils.GenerateToken(3, "admin", models.RoleAdmin, 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if w := doRequest(r, adminToken); w.Code != http.StatusOK {
		t.Errorf("admin deleting bugs: expected 200, got %d", w.Code)
	}
}

func TestAdminRequired(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	pmToken, err := utils.GenerateToken(4, "pm", models.RolePM, 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+pmToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("pm on admin route: expected 403, got %d", w.Code)
	}
}
