// Package foundry talks to an Azure AI Foundry project: the agent and
// dataset control plane, the OpenAI-compatible responses surface, and the
// evals API. All calls authenticate with Entra ID via azidentity.
package foundry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// Scope is the Entra ID token scope for Azure AI Foundry projects.
const Scope = "https://ai.azure.com/.default"

// tokenRefreshWindow forces a refresh when the cached token is this close
// to expiry.
const tokenRefreshWindow = 2 * time.Minute

// TokenSource hands out bearer tokens for the Foundry scope, caching the
// current token until it nears expiry. Safe for concurrent use.
type TokenSource struct {
	cred azcore.TokenCredential

	mu    sync.Mutex
	token azcore.AccessToken
}

// NewTokenSource builds a token source over the default Azure credential
// chain (environment, managed identity, Azure CLI).
func NewTokenSource() (*TokenSource, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	return &TokenSource{cred: cred}, nil
}

// NewTokenSourceFromCredential wraps an existing credential, mainly for
// tests.
func NewTokenSourceFromCredential(cred azcore.TokenCredential) *TokenSource {
	return &TokenSource{cred: cred}
}

// Token returns a valid bearer token, refreshing the cached one if needed.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token.Token != "" && time.Until(ts.token.ExpiresOn) > tokenRefreshWindow {
		return ts.token.Token, nil
	}

	tok, err := ts.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{Scope}})
	if err != nil {
		return "", fmt.Errorf("acquire token: %w", err)
	}
	ts.token = tok
	return tok.Token, nil
}
