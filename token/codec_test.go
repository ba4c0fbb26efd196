package token_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	sdkerrors "github.com/deskhive/go-sdk/internal/errors"
	"github.com/deskhive/go-sdk/token"
)

// makeToken builds an unsigned JWT from raw claims. The codec never verifies
// signatures, so a junk signature segment is enough.
func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + ".c2ln"
}

func TestDecodeExtractsNormalizedClaims(t *testing.T) {
	codec := token.NewCodec()
	exp := time.Now().Add(time.Hour)
	iat := time.Now().Add(-time.Minute)

	raw := makeToken(t, map[string]any{
		"userId": "user-42",
		"sub":    "ignored-when-userId-present",
		"email":  "jo.bloggs@example.com",
		"role":   "ADMIN",
		"iat":    iat.Unix(),
		"exp":    exp.Unix(),
	})

	claims, err := codec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "user-42", claims.UserID)
	require.Equal(t, "jo.bloggs@example.com", claims.Email)
	require.Equal(t, "ADMIN", claims.Role)
	require.False(t, claims.MustChangePassword)
	require.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	require.Equal(t, iat.Unix(), claims.IssuedAt.Unix())
}

func TestDecodeFallsBackToSub(t *testing.T) {
	codec := token.NewCodec()

	raw := makeToken(t, map[string]any{
		"sub": "subject-7",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	claims, err := codec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "subject-7", claims.UserID)
}

func TestDecodeNumericUserID(t *testing.T) {
	codec := token.NewCodec()

	raw := makeToken(t, map[string]any{
		"userId": 1234,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	claims, err := codec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "1234", claims.UserID)
}

func TestDecodeMustChangePasswordClaimKeyVariants(t *testing.T) {
	codec := token.NewCodec()
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		claims map[string]any
		want   bool
	}{
		{"key with embedded space", map[string]any{"change password": true, "exp": exp}, true},
		{"camel case key", map[string]any{"changePassword": true, "exp": exp}, true},
		{"string value", map[string]any{"change password": "true", "exp": exp}, true},
		{"numeric value", map[string]any{"changePassword": 1, "exp": exp}, true},
		{"explicitly false", map[string]any{"changePassword": false, "exp": exp}, false},
		{"absent", map[string]any{"exp": exp}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := codec.Decode(makeToken(t, tc.claims))
			require.NoError(t, err)
			require.Equal(t, tc.want, claims.MustChangePassword)
		})
	}
}

func TestDecodeConfiguredClaimKey(t *testing.T) {
	keys := token.DefaultClaimKeys()
	keys.MustChangePassword = []string{"pwd_reset_required"}
	codec := token.NewCodec(token.WithClaimKeys(keys))

	raw := makeToken(t, map[string]any{
		"pwd_reset_required": true,
		"changePassword":     false,
		"exp":                time.Now().Add(time.Hour).Unix(),
	})

	claims, err := codec.Decode(raw)
	require.NoError(t, err)
	require.True(t, claims.MustChangePassword)
}

func TestDecodeFailures(t *testing.T) {
	codec := token.NewCodec()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not a jwt", "garbage"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
		{"bad payload encoding", "eyJhbGciOiJIUzI1NiJ9.!!!.c2ln"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Decode(tc.raw)
			require.ErrorIs(t, err, sdkerrors.ErrDecodeFailure)
		})
	}
}

func TestDecodeMissingExpIsFailure(t *testing.T) {
	codec := token.NewCodec()

	_, err := codec.Decode(makeToken(t, map[string]any{"userId": "u"}))
	require.ErrorIs(t, err, sdkerrors.ErrDecodeFailure)
}

func TestIsExpiredFailClosed(t *testing.T) {
	codec := token.NewCodec()

	require.True(t, codec.IsExpired("malformed"))
	require.True(t, codec.IsExpired(""))
	require.True(t, codec.IsExpired(makeToken(t, map[string]any{
		"exp": time.Now().Add(-time.Minute).Unix(),
	})))
	require.False(t, codec.IsExpired(makeToken(t, map[string]any{
		"exp": time.Now().Add(time.Hour).Unix(),
	})))
}

func TestUntilExpiry(t *testing.T) {
	codec := token.NewCodec()

	require.Zero(t, codec.UntilExpiry("malformed"))
	require.Zero(t, codec.UntilExpiry(makeToken(t, map[string]any{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})))

	remaining := codec.UntilExpiry(makeToken(t, map[string]any{
		"exp": time.Now().Add(time.Hour).Unix(),
	}))
	require.Greater(t, remaining, 59*time.Minute)
	require.LessOrEqual(t, remaining, time.Hour)
}

func TestIsExpiringSoon(t *testing.T) {
	codec := token.NewCodec()

	// 60 seconds left is inside the default five-minute window.
	require.True(t, codec.IsExpiringSoon(makeToken(t, map[string]any{
		"exp": time.Now().Add(60 * time.Second).Unix(),
	})))
	require.False(t, codec.IsExpiringSoon(makeToken(t, map[string]any{
		"exp": time.Now().Add(time.Hour).Unix(),
	})))
	// Already expired is not "expiring", it is gone.
	require.False(t, codec.IsExpiringSoon(makeToken(t, map[string]any{
		"exp": time.Now().Add(-time.Minute).Unix(),
	})))

	narrow := token.NewCodec(token.WithRefreshWindow(30 * time.Second))
	require.False(t, narrow.IsExpiringSoon(makeToken(t, map[string]any{
		"exp": time.Now().Add(60 * time.Second).Unix(),
	})))
}

func TestNowTimeFuncOverride(t *testing.T) {
	codec := token.NewCodec()
	raw := makeToken(t, map[string]any{"exp": time.Now().Add(time.Hour).Unix()})

	original := token.NowTimeFunc
	defer func() { token.NowTimeFunc = original }()

	token.NowTimeFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }
	require.True(t, codec.IsExpired(raw))
}
