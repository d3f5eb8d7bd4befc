package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/trusttrade/trusttrade/pkg/runtime"
	"golang.org/x/oauth2"
)

const (
	TokenStorageFileName = "token.json"
)

// NewClient returns an http client that sends token as a bearer credential.
// An empty token falls back to the token cached in the runtime directory by
// the web login, and finally to an anonymous client.
func NewClient(ctx context.Context, token string, timeout time.Duration) (*http.Client, error) {
	tok, err := resolveToken(token)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return &http.Client{Timeout: timeout}, nil
	}

	// oauth2 picks up the base client from the context
	base := &http.Client{Timeout: timeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))
	client.Timeout = timeout
	return client, nil
}

func resolveToken(token string) (*oauth2.Token, error) {
	if token != "" {
		return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
	}

	tokFile, err := runtime.File(TokenStorageFileName)
	if err != nil {
		return nil, fmt.Errorf("unable to determine token storage file %s: %w", TokenStorageFileName, err)
	}
	tok, err := TokenFromFile(tokFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read cached token: %w", err)
	}
	return tok, nil
}

// Retrieves a token from a local file.
func TokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}
