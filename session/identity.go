package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"spendly/backend/models"
)

// identityBaseURL is the Identity Toolkit endpoint behind Firebase
// email/password authentication. The Admin SDK has no password
// sign-in, so those two calls go over REST.
const identityBaseURL = "https://identitytoolkit.googleapis.com/v1"

type identityClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func newIdentityClient(apiKey, baseURL string) *identityClient {
	if baseURL == "" {
		baseURL = identityBaseURL
	}
	return &identityClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type identityRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type identityResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type identityErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *identityClient) signIn(ctx context.Context, email, password string) (*identityResponse, error) {
	return c.post(ctx, "accounts:signInWithPassword", email, password)
}

func (c *identityClient) signUp(ctx context.Context, email, password string) (*identityResponse, error) {
	return c.post(ctx, "accounts:signUp", email, password)
}

func (c *identityClient) post(ctx context.Context, endpoint, email, password string) (*identityResponse, error) {
	body, err := json.Marshal(identityRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode identity request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failure, surfaced as the generic unavailable
		// message.
		return nil, models.NewAuthError("unavailable")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewAuthError("unavailable")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseIdentityError(respBody)
	}

	var result identityResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	return &result, nil
}

// parseIdentityError maps an Identity Toolkit error payload onto the
// fixed AuthError taxonomy. Some codes arrive with a trailing
// explanation ("WEAK_PASSWORD : Password should be ..."), which is
// stripped.
func parseIdentityError(body []byte) error {
	var payload identityErrorResponse
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error.Message == "" {
		return models.NewAuthError("unknown")
	}

	code := payload.Error.Message
	if idx := strings.IndexAny(code, " :"); idx > 0 {
		code = code[:idx]
	}
	return models.NewAuthError(code)
}
