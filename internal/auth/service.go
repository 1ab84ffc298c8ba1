// Package auth implements registration, login, logout and the mailed
// verification and reset flows on top of the token service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"whatnow/cms-api/internal/model"
	"whatnow/cms-api/internal/service"
	"whatnow/cms-api/internal/token"
	"whatnow/cms-api/pkg/apperr"
	"whatnow/cms-api/pkg/security"
	"whatnow/cms-api/validators"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	argon  *security.ArgonHash
	tokens *token.Service
	mail   *service.MailQueue
}

func NewService(db *gorm.DB, argon *security.ArgonHash, tokens *token.Service, mail *service.MailQueue) *Service {
	return &Service{db: db, argon: argon, tokens: tokens, mail: mail}
}

// Register creates the user and its role assignment in one transaction so a
// failure can't leave an orphaned row on either side.
func (s *Service) Register(ctx context.Context, email, password string, roleID int) (*model.User, error) {
	email = validators.NormalizeEmail(email)

	if roleID == 0 {
		roleID = model.RoleNSEditor
	}
	if !model.KnownRole(roleID) {
		return nil, apperr.Validation("Unknown role!")
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(model.User{}).
		Where("email = ?", email).
		Count(&count).
		Error
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	if count > 0 {
		return nil, apperr.Conflict("This email is already registered. Please login or use a different email")
	}

	hash, err := s.argon.HashPassword(password)
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	user := &model.User{
		UUID:         uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Status:       model.StatusActive,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&model.RoleAssignment{
			UserUUID: user.UUID,
			RoleID:   roleID,
		}).Error
	})
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Login runs its checks in a fixed order, each short-circuiting: existence,
// active status, verified email, then the password. The caller exchanges the
// returned user for an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("email = ?", validators.NormalizeEmail(email)).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("Invalid Email Address!")
		}
		return nil, apperr.Upstream(err)
	}

	if user.Status != model.StatusActive {
		return nil, apperr.Validation("User is not active!")
	}

	if !user.EmailVerified {
		return nil, apperr.Validation("Email is not verified!")
	}

	ok, err := s.argon.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	if !ok {
		return nil, apperr.Validation("Wrong Password!")
	}

	user.PasswordHash = ""
	return &user, nil
}

// IssueAccessToken mints the session credential for a logged-in user.
func (s *Service) IssueAccessToken(ctx context.Context, user *model.User) (string, time.Time, error) {
	return s.tokens.Issue(ctx, user.UUID, model.TokenAccess)
}

// Logout revokes the presented token. Unknown tokens revoke to the same
// place, so logout always reports success.
func (s *Service) Logout(ctx context.Context, raw string) error {
	return s.tokens.Revoke(ctx, raw)
}

// SendActivationToken mails a fresh verify_email deep link to the address.
func (s *Service) SendActivationToken(ctx context.Context, email string) error {
	return s.sendTokenMail(ctx, email, model.TokenVerifyEmail,
		"Verify your email address",
		"verify-email",
		"Click <a href='%s'>here</a> to verify your email address.")
}

// SendResetToken mails a fresh reset_password deep link to the address.
func (s *Service) SendResetToken(ctx context.Context, email string) error {
	return s.sendTokenMail(ctx, email, model.TokenResetPassword,
		"Reset your password",
		"reset-password",
		"Click <a href='%s'>here</a> to reset your password.")
}

func (s *Service) sendTokenMail(ctx context.Context, email, typ, subject, path, bodyFmt string) error {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("email = ?", validators.NormalizeEmail(email)).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("No user found with this email address")
		}
		return apperr.Upstream(err)
	}

	raw, _, err := s.tokens.Issue(ctx, user.UUID, typ)
	if err != nil {
		return err
	}

	mail := &service.Mail{
		To:      user.Email,
		Subject: subject,
		Body:    fmt.Sprintf(bodyFmt, deepLink(path, raw)),
	}
	if err := s.mail.Enqueue(mail); err != nil {
		// Fire and forget: the token is issued either way
		zap.L().Error("Failed to enqueue mail", zap.String("to", user.Email), zap.Error(err))
	}

	return nil
}

// VerifyEmail flips email_verified for the token's owner and burns the
// token, making the link single-use.
func (s *Service) VerifyEmail(ctx context.Context, raw string) error {
	user, err := s.tokens.ResolveOwner(ctx, raw, model.TokenVerifyEmail)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).
		Model(model.User{}).
		Where("uuid = ?", user.UUID).
		Update("email_verified", true).
		Error
	if err != nil {
		return apperr.Upstream(err)
	}

	return s.tokens.Revoke(ctx, raw)
}

// ResetPassword sets a new password hash for the token's owner. The reset
// token is revoked on success so it can't be replayed.
func (s *Service) ResetPassword(ctx context.Context, raw, newPassword string) error {
	user, err := s.tokens.ResolveOwner(ctx, raw, model.TokenResetPassword)
	if err != nil {
		return err
	}

	hash, err := s.argon.HashPassword(newPassword)
	if err != nil {
		return apperr.Upstream(err)
	}

	err = s.db.WithContext(ctx).
		Model(model.User{}).
		Where("uuid = ?", user.UUID).
		Update("password_hash", hash).
		Error
	if err != nil {
		return apperr.Upstream(err)
	}

	return s.tokens.Revoke(ctx, raw)
}

func deepLink(path, token string) string {
	scheme := "http"
	if viper.GetBool("host.ssl.enabled") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s?token=%s", scheme, viper.GetString("host.domain"), path, token)
}
