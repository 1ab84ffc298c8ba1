package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"whatnow/cms-api/internal"
	"whatnow/cms-api/internal/model"
	"whatnow/cms-api/internal/rbac"
	"whatnow/cms-api/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func guardedRouter(t *testing.T, group rbac.Group) (*gin.Engine, *internal.Deps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.User{}, model.RoleAssignment{}, model.Token{}))

	deps := &internal.Deps{
		DB: db,
		Tokens: token.NewService(db, []byte("guard-test-secret"), map[string]time.Duration{
			model.TokenAccess: time.Hour,
		}),
		Perms: rbac.Default(),
	}

	router := gin.New()
	router.GET("/guarded", NewAuthGuard(deps, group), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_uuid": c.GetString(CtxUserUUID),
			"role_id":   c.GetInt(CtxRoleID),
		})
	})

	return router, deps
}

func seedUser(t *testing.T, db *gorm.DB, uuid string, roleID int) {
	t.Helper()

	require.NoError(t, db.Create(&model.User{
		UUID:          uuid,
		Email:         uuid + "@example.com",
		Status:        model.StatusActive,
		EmailVerified: true,
	}).Error)
	require.NoError(t, db.Create(&model.RoleAssignment{
		UserUUID: uuid,
		RoleID:   roleID,
	}).Error)
}

func doGet(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGuardAllows(t *testing.T) {
	router, deps := guardedRouter(t, rbac.GroupContent)
	seedUser(t, deps.DB, "editor-1", model.RoleNSEditor)

	raw, _, err := deps.Tokens.Issue(context.Background(), "editor-1", model.TokenAccess)
	require.NoError(t, err)

	w := doGet(router, "Bearer "+raw)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "editor-1")

	// last_active is updated off the request path
	assert.Eventually(t, func() bool {
		var user model.User
		if err := deps.DB.Where("uuid = ?", "editor-1").First(&user).Error; err != nil {
			return false
		}
		return user.LastActive != nil
	}, 2*time.Second, 20*time.Millisecond)
}

func TestGuardFailuresAreIndistinguishable(t *testing.T) {
	router, deps := guardedRouter(t, rbac.GroupSociety)

	// society admits admins only; the editor is authenticated but forbidden
	seedUser(t, deps.DB, "editor-1", model.RoleNSEditor)
	editorToken, _, err := deps.Tokens.Issue(context.Background(), "editor-1", model.TokenAccess)
	require.NoError(t, err)

	// a user holding a valid token but no role assignment
	require.NoError(t, deps.DB.Create(&model.User{
		UUID:          "roleless-1",
		Email:         "roleless@example.com",
		Status:        model.StatusActive,
		EmailVerified: true,
	}).Error)
	rolelessToken, _, err := deps.Tokens.Issue(context.Background(), "roleless-1", model.TokenAccess)
	require.NoError(t, err)

	// a token revoked after issuance
	seedUser(t, deps.DB, "admin-1", model.RoleNSAdmin)
	revokedToken, _, err := deps.Tokens.Issue(context.Background(), "admin-1", model.TokenAccess)
	require.NoError(t, err)
	require.NoError(t, deps.Tokens.Revoke(context.Background(), revokedToken))

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not a bearer scheme", "Basic dXNlcjpwdw=="},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"revoked token", "Bearer " + revokedToken},
		{"no role assignment", "Bearer " + rolelessToken},
		{"role not in group", "Bearer " + editorToken},
	}

	var bodies []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(router, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "Please authenticate")
			bodies = append(bodies, w.Body.String())
		})
	}

	// every failure mode produces the identical response body
	for i := 1; i < len(bodies); i++ {
		assert.Equal(t, bodies[0], bodies[i])
	}
}

func TestGuardRejectsNonAccessTokens(t *testing.T) {
	router, deps := guardedRouter(t, rbac.GroupContent)
	seedUser(t, deps.DB, "editor-1", model.RoleNSEditor)

	svc := token.NewService(deps.DB, []byte("guard-test-secret"), map[string]time.Duration{
		model.TokenVerifyEmail: time.Hour,
	})
	verifyToken, _, err := svc.Issue(context.Background(), "editor-1", model.TokenVerifyEmail)
	require.NoError(t, err)

	w := doGet(router, "Bearer "+verifyToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
