package token

import (
	"context"
	"fmt"
	"testing"
	"time"

	"whatnow/cms-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.User{}, model.RoleAssignment{}, model.Token{}))

	return db
}

func testService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()

	return NewService(db, []byte("test-signing-secret"), map[string]time.Duration{
		model.TokenAccess:        time.Hour,
		model.TokenVerifyEmail:   30 * time.Minute,
		model.TokenResetPassword: 30 * time.Minute,
	})
}

func TestIssueAndVerify(t *testing.T) {
	db := testDB(t)
	svc := testService(t, db)
	ctx := context.Background()

	raw, expiresAt, err := svc.Issue(ctx, "user-a", model.TokenAccess)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	rec, err := svc.Verify(ctx, raw, model.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-a", rec.UserUUID)
	assert.Equal(t, model.TokenAccess, rec.Type)
	assert.False(t, rec.Blacklisted)
}

func TestVerifyRejections(t *testing.T) {
	db := testDB(t)
	svc := testService(t, db)
	ctx := context.Background()

	raw, _, err := svc.Issue(ctx, "user-a", model.TokenAccess)
	require.NoError(t, err)

	t.Run("wrong type", func(t *testing.T) {
		_, err := svc.Verify(ctx, raw, model.TokenVerifyEmail)
		require.Error(t, err)
		assert.EqualError(t, err, "token not found")
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Verify(ctx, "not.a.jwt", model.TokenAccess)
		require.Error(t, err)
		assert.EqualError(t, err, "token not found")
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewService(db, []byte("other-secret"), map[string]time.Duration{
			model.TokenAccess: time.Hour,
		})
		forged, _, err := other.Issue(ctx, "user-a", model.TokenAccess)
		require.NoError(t, err)

		_, err = svc.Verify(ctx, forged, model.TokenAccess)
		require.Error(t, err)
		assert.EqualError(t, err, "token not found")
	})

	t.Run("blacklisted record", func(t *testing.T) {
		require.NoError(t, db.Model(model.Token{}).
			Where("token = ?", raw).
			Update("blacklisted", true).
			Error)

		_, err := svc.Verify(ctx, raw, model.TokenAccess)
		require.Error(t, err)
		assert.EqualError(t, err, "token not found")

		require.NoError(t, db.Model(model.Token{}).
			Where("token = ?", raw).
			Update("blacklisted", false).
			Error)
	})

	t.Run("expired record", func(t *testing.T) {
		require.NoError(t, db.Model(model.Token{}).
			Where("token = ?", raw).
			Update("expires_at", time.Now().Add(-time.Minute)).
			Error)

		_, err := svc.Verify(ctx, raw, model.TokenAccess)
		require.Error(t, err)
		assert.EqualError(t, err, "token not found")
	})
}

func TestVerifyFailsAfterRevoke(t *testing.T) {
	db := testDB(t)
	svc := testService(t, db)
	ctx := context.Background()

	raw, _, err := svc.Issue(ctx, "user-a", model.TokenAccess)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, raw))

	// The signature still parses fine, the store row is gone
	_, err = svc.parse(raw)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, raw, model.TokenAccess)
	require.Error(t, err)
	assert.EqualError(t, err, "token not found")
}

func TestRevokeIsIdempotent(t *testing.T) {
	db := testDB(t)
	svc := testService(t, db)
	ctx := context.Background()

	require.NoError(t, svc.Revoke(ctx, "never-issued"))

	raw, _, err := svc.Issue(ctx, "user-a", model.TokenAccess)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, raw))
	require.NoError(t, svc.Revoke(ctx, raw))
}

func TestIssueSweepsExpiredSameTypeGlobally(t *testing.T) {
	db := testDB(t)
	svc := testService(t, db)
	ctx := context.Background()

	stale := time.Now().Add(-time.Hour)
	fresh := time.Now().Add(time.Hour)

	seed := []model.Token{
		{Token: "expired-a", UserUUID: "user-a", Type: model.TokenAccess, ExpiresAt: stale},
		{Token: "expired-b", UserUUID: "user-b", Type: model.TokenAccess, ExpiresAt: stale},
		{Token: "live-b", UserUUID: "user-b", Type: model.TokenAccess, ExpiresAt: fresh},
		{Token: "expired-reset-b", UserUUID: "user-b", Type: model.TokenResetPassword, ExpiresAt: stale},
	}
	for _, rec := range seed {
		require.NoError(t, db.Create(&rec).Error)
	}

	// Issuing for user-a must sweep user-b's expired access token too,
	// while leaving live rows and other types alone
	_, _, err := svc.Issue(ctx, "user-a", model.TokenAccess)
	require.NoError(t, err)

	var remaining []string
	require.NoError(t, db.Model(model.Token{}).Order("token").Pluck("token", &remaining).Error)

	assert.NotContains(t, remaining, "expired-a")
	assert.NotContains(t, remaining, "expired-b")
	assert.Contains(t, remaining, "live-b")
	assert.Contains(t, remaining, "expired-reset-b")
}

func TestResolveOwner(t *testing.T) {
	db := testDB(t)
	svc := testService(t, db)
	ctx := context.Background()

	require.NoError(t, db.Create(&model.User{
		UUID:   "user-a",
		Email:  "a@example.com",
		Status: model.StatusActive,
	}).Error)

	raw, _, err := svc.Issue(ctx, "user-a", model.TokenVerifyEmail)
	require.NoError(t, err)

	user, err := svc.ResolveOwner(ctx, raw, model.TokenVerifyEmail)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)

	t.Run("owner row missing", func(t *testing.T) {
		orphan, _, err := svc.Issue(ctx, "ghost", model.TokenVerifyEmail)
		require.NoError(t, err)

		_, err = svc.ResolveOwner(ctx, orphan, model.TokenVerifyEmail)
		require.Error(t, err)
		assert.EqualError(t, err, "token not found")
	})
}

func TestIssueUnknownType(t *testing.T) {
	db := testDB(t)
	svc := testService(t, db)

	_, _, err := svc.Issue(context.Background(), "user-a", "session")
	require.Error(t, err)
}
