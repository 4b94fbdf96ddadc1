// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bureau-foundation/matrix-join/lib/secret"
)

// LoginWithCredentials logs in with the password flow. The password
// Buffer is read but not closed.
func (c *Client) LoginWithCredentials(ctx context.Context, username string, password *secret.Buffer) error {
	return c.Login(ctx, PasswordLogin(username, password))
}

// LoginWithToken logs in with the token flow (a login token issued by
// the homeserver, not an access token).
func (c *Client) LoginWithToken(ctx context.Context, token string) error {
	return c.Login(ctx, TokenLogin(token))
}

// LoginWithSAML2 logs in with the SAML2 flow using the relay state
// returned by the identity provider.
func (c *Client) LoginWithSAML2(ctx context.Context, relayState string) error {
	return c.Login(ctx, SAML2Login(relayState))
}

// Login sends POST login and, on success, stores the returned access
// token for subsequent requests, replacing any token already held.
//
// Returns an *AuthError when the homeserver rejects the login (wrapping
// the *RequestError) or when a 2xx response carries no non-empty
// access_token. On any error the previously held token, if any, is kept.
func (c *Client) Login(ctx context.Context, request LoginRequest) error {
	body, err := request.wireBody()
	if err != nil {
		return err
	}

	responseBody, err := c.doRequest(ctx, requestOptions{
		method:   http.MethodPost,
		endpoint: "login",
		body:     body,
	})
	if err != nil {
		var requestErr *RequestError
		if errors.As(err, &requestErr) {
			return &AuthError{Reason: "homeserver rejected login", Err: requestErr}
		}
		return fmt.Errorf("messaging: login failed: %w", err)
	}

	// A body that is not a JSON object, or whose access_token is not a
	// string, is treated the same as a missing token.
	var response loginResponse
	if err := json.Unmarshal(responseBody, &response); err != nil {
		return &AuthError{Reason: "malformed login response", Err: err}
	}
	if response.AccessToken == "" {
		return &AuthError{Reason: "no access token in login response"}
	}

	token, err := secret.NewFromString(response.AccessToken)
	if err != nil {
		return fmt.Errorf("messaging: protecting access token: %w", err)
	}
	if err := c.replaceToken(token); err != nil {
		c.logger.Warn("releasing previous access token failed", "error", err)
	}

	c.logger.Info("logged in to matrix",
		"login_type", request.Type,
		"user_id", response.UserID,
		"device_id", response.DeviceID,
	)
	return nil
}

// wireBody checks that the request carries the credential its flow
// needs and converts it to the JSON body. The password is converted to
// a string here, at the serialization boundary.
func (r LoginRequest) wireBody() (loginBody, error) {
	switch r.Type {
	case LoginTypePassword:
		if r.User == "" {
			return loginBody{}, fmt.Errorf("messaging: username is required for password login")
		}
		if r.Password == nil {
			return loginBody{}, fmt.Errorf("messaging: password is required for password login")
		}
		return loginBody{Type: r.Type, User: r.User, Password: r.Password.String()}, nil
	case LoginTypeToken:
		if r.Token == "" {
			return loginBody{}, fmt.Errorf("messaging: token is required for token login")
		}
		return loginBody{Type: r.Type, Token: r.Token}, nil
	case LoginTypeSAML2:
		if r.RelayState == "" {
			return loginBody{}, fmt.Errorf("messaging: relay state is required for SAML2 login")
		}
		return loginBody{Type: r.Type, RelayState: r.RelayState}, nil
	default:
		return loginBody{}, fmt.Errorf("messaging: unsupported login type %q", r.Type)
	}
}

// Logout sends GET logout with the current token and then clears the
// token locally, whatever the homeserver answered. A non-2xx status is
// logged, not returned. The only errors are failures to reach the
// homeserver, and the local token is cleared in that case too.
func (c *Client) Logout(ctx context.Context) error {
	result, sendErr := c.send(ctx, requestOptions{
		method:        http.MethodGet,
		endpoint:      "logout",
		authenticated: true,
		discardBody:   true,
	})
	if sendErr == nil && !result.ok() {
		c.logger.Warn("logout request was not accepted",
			"status", result.statusCode,
			"body", truncate(string(result.body), 256),
		)
	}

	if err := c.replaceToken(nil); err != nil {
		c.logger.Warn("releasing access token failed", "error", err)
	}
	if sendErr != nil {
		return sendErr
	}

	c.logger.Info("logged out of matrix", "status", result.statusCode)
	return nil
}
