// Package token decodes DeskHive bearer tokens into normalized claims.
//
// The codec is deliberately unverified: signature validation belongs to the
// backend, the client only needs to read the claims it was handed. Every
// operation is pure and fail-closed: a token that cannot be decoded is
// treated as expired, never as a crash.
package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	sdkerrors "github.com/deskhive/go-sdk/internal/errors"
	"github.com/deskhive/go-sdk/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// DefaultRefreshWindow is the proactive-refresh threshold used when a codec
// is constructed without an explicit window.
const DefaultRefreshWindow = 5 * time.Minute

// Claims is the normalized view of a decoded access token. Fields absent from
// the token are zero-valued; the rest of the SDK never fetches user data from
// anywhere else.
type Claims struct {
	UserID             string
	Email              string
	Role               string
	MustChangePassword bool
	IssuedAt           time.Time
	ExpiresAt          time.Time
}

// ClaimKeys maps raw claim keys onto normalized fields. The backend has
// emitted the forced-password-change flag under more than one key (one of
// them with an embedded space), so the lookup order is configuration.
type ClaimKeys struct {
	UserID             []string
	Email              []string
	Role               []string
	MustChangePassword []string
}

// DefaultClaimKeys accepts every key shape observed across backend versions.
func DefaultClaimKeys() ClaimKeys {
	return ClaimKeys{
		UserID:             []string{"userId", "sub"},
		Email:              []string{"email"},
		Role:               []string{"role"},
		MustChangePassword: []string{"change password", "changePassword"},
	}
}

// Codec decodes bearer tokens. Pure, no I/O, safe for concurrent use.
type Codec struct {
	keys   ClaimKeys
	window time.Duration
}

// CodecOption modifies a Codec.
type CodecOption func(*Codec)

// WithClaimKeys overrides the raw-claim-key mapping.
func WithClaimKeys(keys ClaimKeys) CodecOption {
	return func(c *Codec) {
		c.keys = keys
	}
}

// WithRefreshWindow overrides the expiring-soon threshold.
func WithRefreshWindow(window time.Duration) CodecOption {
	return func(c *Codec) {
		c.window = window
	}
}

// NewCodec creates a Codec with the default claim mapping and refresh window.
func NewCodec(options ...CodecOption) *Codec {
	codec := &Codec{
		keys:   DefaultClaimKeys(),
		window: DefaultRefreshWindow,
	}
	for _, opt := range options {
		opt(codec)
	}
	return codec
}

// Decode parses the token without verifying its signature and extracts
// normalized claims. A missing exp claim is a decode failure: the rest of the
// lifecycle cannot reason about a token it cannot expire.
func (c *Codec) Decode(rawToken string) (*Claims, error) {
	if rawToken == "" {
		return nil, errors.Wrap(sdkerrors.ErrDecodeFailure, "[Codec.Decode] empty token")
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(sdkerrors.ErrDecodeFailure, err.Error())
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrap(sdkerrors.ErrDecodeFailure, "[Codec.Decode] claims are not a map")
	}

	exp, ok := mapClaims["exp"].(float64)
	if !ok {
		return nil, errors.Wrap(sdkerrors.ErrDecodeFailure, "[Codec.Decode] missing exp claim")
	}

	claims := &Claims{
		UserID:    firstString(mapClaims, c.keys.UserID),
		Email:     firstString(mapClaims, c.keys.Email),
		Role:      firstString(mapClaims, c.keys.Role),
		ExpiresAt: time.Unix(int64(exp), 0),
	}

	if iat, ok := mapClaims["iat"].(float64); ok {
		claims.IssuedAt = time.Unix(int64(iat), 0)
	}

	for _, key := range c.keys.MustChangePassword {
		if raw, ok := mapClaims[key]; ok {
			claims.MustChangePassword = utils.ToBool(raw)
			break
		}
	}

	return claims, nil
}

// IsExpired reports whether the token's exp claim is in the past. Any decode
// failure counts as expired.
func (c *Codec) IsExpired(rawToken string) bool {
	claims, err := c.Decode(rawToken)
	if err != nil {
		return true
	}
	return !NowTimeFunc().Before(claims.ExpiresAt)
}

// UntilExpiry returns how long the token remains valid, zero if it is
// expired or cannot be decoded.
func (c *Codec) UntilExpiry(rawToken string) time.Duration {
	claims, err := c.Decode(rawToken)
	if err != nil {
		return 0
	}
	remaining := claims.ExpiresAt.Sub(NowTimeFunc())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsExpiringSoon reports whether the token is still valid but inside the
// proactive-refresh window.
func (c *Codec) IsExpiringSoon(rawToken string) bool {
	remaining := c.UntilExpiry(rawToken)
	return remaining > 0 && remaining < c.window
}

func firstString(claims jwtlib.MapClaims, keys []string) string {
	for _, key := range keys {
		if raw, ok := claims[key]; ok {
			if s := utils.ToString(raw); s != "" {
				return s
			}
		}
	}
	return ""
}
