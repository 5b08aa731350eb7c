package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func signed(t *testing.T, key []byte, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	var seen string
	handler := Authenticate(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := ActorFromContext(r.Context())
		require.NoError(t, err)
		seen = actor.UserID
		w.WriteHeader(http.StatusNoContent)
	}))

	valid := signed(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-1", "role": RoleOrganizer, "exp": time.Now().Add(time.Hour).Unix(),
	})
	expired := signed(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-1", "role": RoleOrganizer, "exp": time.Now().Add(-time.Hour).Unix(),
	})
	forged := signed(t, []byte("other"), jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u-1", "role": RoleAdmin})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Bearer " + valid, want: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer " + valid, want: http.StatusNoContent},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, want: http.StatusUnauthorized},
		{name: "wrong key", header: "Bearer " + forged, want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, "u-1", seen)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	handler := Authorize(RoleOrganizer, RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for role, want := range map[string]int{
		RoleOrganizer: http.StatusOK,
		RoleAdmin:     http.StatusOK,
		RolePlayer:    http.StatusForbidden,
		"guest":       http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithClaims(req.Context(), jwt.MapClaims{"user_id": "u", "role": role}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}

func TestActorFromContext(t *testing.T) {
	tests := []struct {
		name      string
		claims    jwt.MapClaims
		wantID    string
		organizer bool
		admin     bool
		wantErr   bool
	}{
		{name: "organizer", claims: jwt.MapClaims{"user_id": "u-7", "role": RoleOrganizer}, wantID: "u-7", organizer: true},
		{name: "admin", claims: jwt.MapClaims{"user_id": "root", "role": RoleAdmin}, wantID: "root", organizer: true, admin: true},
		{name: "player numeric id", claims: jwt.MapClaims{"user_id": float64(42), "role": RolePlayer}, wantID: "42"},
		{name: "fractional id", claims: jwt.MapClaims{"user_id": 4.5, "role": RolePlayer}, wantErr: true},
		{name: "missing role", claims: jwt.MapClaims{"user_id": "u"}, wantErr: true},
		{name: "unknown role", claims: jwt.MapClaims{"user_id": "u", "role": "guest"}, wantErr: true},
		{name: "missing id", claims: jwt.MapClaims{"role": RolePlayer}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, err := ActorFromContext(WithClaims(context.Background(), tt.claims))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, actor.UserID)
			assert.Equal(t, tt.organizer, actor.Organizer)
			assert.Equal(t, tt.admin, actor.Admin)
		})
	}

	_, err := ActorFromContext(context.Background())
	assert.Error(t, err)
}
