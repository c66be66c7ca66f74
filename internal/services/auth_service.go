package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/localnerve/authorizer-go"
	"github.com/snapform/snapform-api/internal/config"
	"github.com/snapform/snapform-api/internal/logging"
	"github.com/snapform/snapform-api/internal/utils"
)

var (
	authClient *authorizer.AuthorizerClient
	authOnce   sync.Once
)

// Identity is a verified session user.
type Identity struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"given_name"`
	Roles []string `json:"roles"`
}

// SessionValidator verifies a session cookie.
type SessionValidator interface {
	ValidateSession(cookie string) (*Identity, error)
}

// IsAuthorizerInitialized returns true if the Authorizer client is initialized
func IsAuthorizerInitialized() bool {
	return authClient != nil
}

// InitAuthorizer initializes the Authorizer client (singleton pattern)
func InitAuthorizer(cfg *config.Config, requestProtocol, requestHost string) error {
	var initErr error

	authOnce.Do(func() {
		// Ping the Authorizer service first
		if err := utils.PingAuthorizer(context.Background(), cfg.AuthzURL); err != nil {
			initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
		logging.Infof("Initializing Authorizer: authorizerURL=%s, clientID=%s, redirectURL=%s",
			cfg.AuthzURL, cfg.AuthzClientID, redirectURL)

		var err error
		authClient, err = authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
		if err != nil {
			initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
	})

	return initErr
}

// AuthorizerSessions validates cookies against the Authorizer service for
// the given roles.
type AuthorizerSessions struct {
	Roles []string
}

func (a AuthorizerSessions) ValidateSession(cookie string) (*Identity, error) {
	if authClient == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	rolesPtrs := make([]*string, len(a.Roles))
	for i := range a.Roles {
		rolesPtrs[i] = &a.Roles[i]
	}

	res, err := authClient.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid || res.User == nil {
		return nil, fmt.Errorf("session is not valid")
	}

	// The SDK user type carries many optional fields; only the JSON shape is relied on.
	raw, err := json.Marshal(res.User)
	if err != nil {
		return nil, fmt.Errorf("unreadable session user: %w", err)
	}
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, fmt.Errorf("unreadable session user: %w", err)
	}
	if id.ID == "" || id.Email == "" {
		return nil, fmt.Errorf("session user has no id or email")
	}
	return &id, nil
}
