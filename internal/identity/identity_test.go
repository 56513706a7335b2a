package identity_test

import (
	"encoding/json"
	"testing"
	"time"

	"taskManager/internal/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want identity.Ref
	}{
		{name: "plain id", raw: "user_1", want: identity.Ref{ID: "user_1"}},
		{name: "legacy embedded name", raw: "user_1 (Jan Kowalski)", want: identity.Ref{ID: "user_1", DisplayName: "Jan Kowalski"}},
		{name: "email", raw: "jan@example.com", want: identity.Ref{ID: "jan@example.com"}},
		{name: "whitespace", raw: "  user_2  ", want: identity.Ref{ID: "user_2"}},
		{name: "empty", raw: "", want: identity.Ref{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, identity.ParseRef(tt.raw))
		})
	}
}

func TestNormalizeIDs(t *testing.T) {
	got := identity.NormalizeIDs([]string{"u1 (Ann)", "", "u2", "u2"})
	assert.Equal(t, []string{"u1", "u2", "u2"}, got)
}

func TestViewer_Matches(t *testing.T) {
	v := identity.Viewer{ID: "u1", Email: "ann@example.com", Name: "Ann"}

	assert.True(t, v.Matches("u1"))
	assert.True(t, v.Matches("ann@example.com"))
	assert.True(t, v.Matches("Ann"))
	assert.False(t, v.Matches("u2"))
	assert.False(t, v.Matches(""))

	partial := identity.Viewer{ID: "u1"}
	assert.False(t, partial.Matches(""), "empty candidates never match")
	assert.False(t, identity.Viewer{}.Known())
	assert.True(t, partial.Known())
}

func TestViewer_In(t *testing.T) {
	v := identity.Viewer{ID: "u2", Email: "bob@example.com"}

	assert.True(t, v.In([]string{"u1", "u2 (Bob)"}))
	assert.True(t, v.In([]string{"bob@example.com"}))
	assert.False(t, v.In([]string{"u1"}))
	assert.False(t, v.In(nil))
}

func TestNames_Resolve(t *testing.T) {
	names := identity.Names{"u3": "Carol"}
	viewer := identity.Viewer{ID: "u1", Email: "ann@example.com"}

	assert.Equal(t, "ann@example.com", names.Resolve("u1", viewer))
	assert.Equal(t, "You", names.Resolve("u1", identity.Viewer{ID: "u1"}))
	assert.Equal(t, "Dan", names.Resolve("u4 (Dan)", viewer))
	assert.Equal(t, "eve@example.com", names.Resolve("eve@example.com", viewer))
	assert.Equal(t, "Carol", names.Resolve("u3", viewer))
	assert.Equal(t, "u9", names.Resolve("u9", viewer))
}

func signed(t *testing.T, claims *identity.Claims, secret string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestParseToken(t *testing.T) {
	claims := &identity.Claims{
		Email: "ann@example.com",
		Name:  "Ann",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	t.Run("unverified decode", func(t *testing.T) {
		got, err := identity.ParseToken(signed(t, claims, "whatever"), "")
		require.NoError(t, err)
		assert.Equal(t, identity.Viewer{ID: "user_1", Email: "ann@example.com", Name: "Ann"}, got.Viewer())
	})

	t.Run("verified with matching secret", func(t *testing.T) {
		got, err := identity.ParseToken("Bearer "+signed(t, claims, "s3cret"), "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "user_1", got.Subject)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := identity.ParseToken(signed(t, claims, "other"), "s3cret")
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		noSub := &identity.Claims{Email: "x@example.com"}
		_, err := identity.ParseToken(signed(t, noSub, "k"), "")
		assert.ErrorIs(t, err, identity.ErrNoSubject)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := identity.ParseToken("not-a-token", "")
		assert.Error(t, err)
	})
}

func TestRef_JSONIsCamelCase(t *testing.T) {
	raw, err := json.Marshal(identity.ParseRef("user_1 (Jan Kowalski)"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"user_1","displayName":"Jan Kowalski"}`, string(raw))

	raw, err = json.Marshal(identity.ParseRef("user_2"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"user_2"}`, string(raw))
}
