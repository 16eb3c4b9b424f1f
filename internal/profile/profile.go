package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ohadf2015/boggle-new-sub010/internal/models"
	"github.com/ohadf2015/boggle-new-sub010/internal/util"
)

// Client talks to the external profile/stats service. The game core never
// blocks on it: pushes are best-effort and identity hints are verified
// locally from the token.
type Client struct {
	baseURL string
	secret  []byte
	http    *http.Client
}

func NewClient(baseURL, guestTokenSecret string) *Client {
	return &Client{
		baseURL: baseURL,
		secret:  []byte(guestTokenSecret),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// PushStats posts final per-player results. Failures are logged and dropped;
// room state is already settled by the time this runs.
func (c *Client) PushStats(stats []models.FinalPlayerStats) {
	if c.baseURL == "" || len(stats) == 0 {
		return
	}
	body, err := json.Marshal(map[string]any{"players": stats})
	if err != nil {
		util.LogWarn("Failed to marshal final stats: %v", err)
		return
	}
	resp, err := c.http.Post(c.baseURL+"/v1/game-results", "application/json", bytes.NewReader(body))
	if err != nil {
		util.LogWarn("Failed to push final stats: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		util.LogWarn("Profile service rejected final stats: %s", resp.Status)
	}
}

var ErrInvalidGuestToken = errors.New("invalid guest token")

// VerifyGuestToken extracts the auth user id hint from a guest token. An
// empty token is fine (anonymous play); a malformed or mis-signed one is not.
func (c *Client) VerifyGuestToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	if len(c.secret) == 0 {
		// No secret configured: tokens carry no trusted identity.
		return "", nil
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidGuestToken
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidGuestToken
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidGuestToken
	}
	return sub, nil
}
