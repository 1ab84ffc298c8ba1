// Package token signs bearer credentials and reconciles them against the
// persisted token store. A signature alone never authenticates anybody: the
// store row is authoritative, so revocation works even though the JWTs
// themselves are stateless.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"whatnow/cms-api/internal/model"
	"whatnow/cms-api/pkg/apperr"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Claims is the signed payload carried by every issued token.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

type Service struct {
	db     *gorm.DB
	secret []byte
	ttls   map[string]time.Duration
}

// NewService builds the token service. ttls maps token type to lifetime and
// must cover every type the callers issue.
func NewService(db *gorm.DB, secret []byte, ttls map[string]time.Duration) *Service {
	return &Service{db: db, secret: secret, ttls: ttls}
}

// errInvalid deliberately collapses every failure cause (absent, expired,
// blacklisted, forged, malformed) into one message so a caller can't probe
// why a token was rejected.
func errInvalid() *apperr.Error {
	return apperr.Authentication("token not found")
}

func (s *Service) TTL(typ string) time.Duration {
	return s.ttls[typ]
}

// Issue signs a fresh token of the given type for the user, persists its
// store row, then sweeps every already-expired row of the same type across
// all owners. The sweep is housekeeping piggybacked on issuance and runs
// independently of the reaper; its failure doesn't fail the issuance.
func (s *Service) Issue(ctx context.Context, userUUID, typ string) (string, time.Time, error) {
	ttl, ok := s.ttls[typ]
	if !ok {
		return "", time.Time{}, apperr.Upstream(fmt.Errorf("no TTL configured for token type %q", typ))
	}

	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userUUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, apperr.Upstream(err)
	}

	err = s.db.WithContext(ctx).Create(&model.Token{
		Token:     raw,
		UserUUID:  userUUID,
		Type:      typ,
		ExpiresAt: expiresAt,
	}).Error
	if err != nil {
		return "", time.Time{}, apperr.Upstream(err)
	}

	err = s.db.WithContext(ctx).
		Where("type = ? AND expires_at < ?", typ, now).
		Delete(&model.Token{}).
		Error
	if err != nil {
		zap.L().Error("Failed to sweep expired tokens on issuance",
			zap.String("type", typ), zap.Error(err))
	}

	return raw, expiresAt, nil
}

// Verify checks the signature and structural expiry of raw, then requires a
// live store row matching (token, type, subject). Any failure surfaces as
// the same generic authentication error.
func (s *Service) Verify(ctx context.Context, raw, typ string) (*model.Token, error) {
	claims, err := s.parse(raw)
	if err != nil || claims.Type != typ || claims.Subject == "" {
		return nil, errInvalid()
	}

	var rec model.Token
	err = s.db.WithContext(ctx).
		Where("token = ? AND type = ? AND user_uuid = ?", raw, typ, claims.Subject).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalid()
		}
		return nil, apperr.Upstream(err)
	}

	if rec.Blacklisted || !time.Now().Before(rec.ExpiresAt) {
		return nil, errInvalid()
	}

	return &rec, nil
}

// Revoke deletes the store row for raw. Revoking an unknown token is a
// no-op, not an error.
func (s *Service) Revoke(ctx context.Context, raw string) error {
	err := s.db.WithContext(ctx).
		Where("token = ?", raw).
		Delete(&model.Token{}).
		Error
	if err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

// ResolveOwner converts a still-valid token into the user it was issued to.
// Used to turn one-time verification and reset tokens into the acting user.
func (s *Service) ResolveOwner(ctx context.Context, raw, typ string) (*model.User, error) {
	rec, err := s.Verify(ctx, raw, typ)
	if err != nil {
		return nil, err
	}

	var user model.User
	err = s.db.WithContext(ctx).
		Where("uuid = ?", rec.UserUUID).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalid()
		}
		return nil, apperr.Upstream(err)
	}

	return &user, nil
}

func (s *Service) parse(raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("unable to map claims")
	}

	return claims, nil
}
