package profile

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohadf2015/boggle-new-sub010/internal/models"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerifyGuestToken_EmptyTokenIsAnonymous(t *testing.T) {
	c := NewClient("", testSecret)
	sub, err := c.VerifyGuestToken("")
	require.NoError(t, err)
	assert.Empty(t, sub)
}

func TestVerifyGuestToken_NoSecretConfigured(t *testing.T) {
	c := NewClient("", "")
	sub, err := c.VerifyGuestToken("whatever")
	require.NoError(t, err)
	assert.Empty(t, sub, "without a secret no identity is trusted")
}

func TestVerifyGuestToken_ValidToken(t *testing.T) {
	c := NewClient("", testSecret)
	token := signedToken(t, testSecret, jwt.MapClaims{"sub": "user-42"})

	sub, err := c.VerifyGuestToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", sub)
}

func TestVerifyGuestToken_Rejections(t *testing.T) {
	c := NewClient("", testSecret)

	_, err := c.VerifyGuestToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidGuestToken)

	wrongKey := signedToken(t, "other-secret", jwt.MapClaims{"sub": "user-42"})
	_, err = c.VerifyGuestToken(wrongKey)
	assert.ErrorIs(t, err, ErrInvalidGuestToken)

	noSubject := signedToken(t, testSecret, jwt.MapClaims{"aud": "game"})
	_, err = c.VerifyGuestToken(noSubject)
	assert.ErrorIs(t, err, ErrInvalidGuestToken)
}

func TestPushStats(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	c.PushStats([]models.FinalPlayerStats{{Username: "alice", Score: 12, GameCode: "ROOM01", Round: 1}})

	assert.Equal(t, "/v1/game-results", gotPath)
	var payload struct {
		Players []models.FinalPlayerStats `json:"players"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	require.Len(t, payload.Players, 1)
	assert.Equal(t, "alice", payload.Players[0].Username)
	assert.Equal(t, 12, payload.Players[0].Score)
}

func TestPushStats_NoopWithoutBaseURL(t *testing.T) {
	c := NewClient("", "")
	// Must not panic or hang.
	c.PushStats([]models.FinalPlayerStats{{Username: "alice"}})
	c.PushStats(nil)
}
