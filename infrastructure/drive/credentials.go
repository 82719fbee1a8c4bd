package drive

import (
	"encoding/json"
	"fmt"
	"os"

	"drive-upload-relay/domain/distribution"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

// Credentials is the subset of a service account key file needed to sign
// token requests
type Credentials struct {
	Type         string `json:"type"`
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
	TokenURI     string `json:"token_uri"`
}

// LoadCredentials reads and validates a service account key file
func LoadCredentials(path string) (*Credentials, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to read credentials file: %v", distribution.ErrCredentials, err)
	}
	return ParseCredentials(b)
}

// ParseCredentials parses a service account key from JSON
func ParseCredentials(b []byte) (*Credentials, error) {
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: unable to parse credentials: %v", distribution.ErrCredentials, err)
	}
	if c.ClientEmail == "" {
		return nil, fmt.Errorf("%w: client_email is missing", distribution.ErrCredentials)
	}
	if c.PrivateKey == "" {
		return nil, fmt.Errorf("%w: private_key is missing", distribution.ErrCredentials)
	}
	return &c, nil
}

// JWTConfig builds the two-legged JWT flow configuration for the given scopes
func (c *Credentials) JWTConfig(scopes []string) *jwt.Config {
	tokenURL := c.TokenURI
	if tokenURL == "" {
		tokenURL = google.JWTTokenURL
	}
	return &jwt.Config{
		Email:        c.ClientEmail,
		PrivateKey:   []byte(c.PrivateKey),
		PrivateKeyID: c.PrivateKeyID,
		Scopes:       scopes,
		TokenURL:     tokenURL,
	}
}
