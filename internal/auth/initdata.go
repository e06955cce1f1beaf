// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth handles the Telegram launch-context string ("init data")
// that authenticates the client to the Ploymind backend. The raw string is
// produced by Telegram when the Mini App launches; this client stores it
// locally and replays it on every request. Verification happens server
// side, never here.
package auth

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/jeranaias/ploymind-tui/internal/model"
)

// ParseUser extracts the embedded user object from a launch-context string.
// Init data is a URL query string whose "user" field carries JSON.
func ParseUser(initData string) (model.UserData, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return model.UserData{}, fmt.Errorf("malformed init data: %w", err)
	}

	raw := values.Get("user")
	if raw == "" {
		return model.UserData{}, fmt.Errorf("init data has no user field")
	}

	var user model.UserData
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return model.UserData{}, fmt.Errorf("invalid user payload: %w", err)
	}
	return user, nil
}

// MockInitData synthesizes a launch context for dev mode, mirroring what
// the backend's dev bypass accepts. Never valid against a production
// backend because the hash is not a real HMAC.
func MockInitData() string {
	user, _ := json.Marshal(model.UserData{
		ID:           123456789,
		FirstName:    "Dev",
		Username:     "ploymind_dev",
		LanguageCode: "en",
	})

	values := url.Values{}
	values.Set("query_id", "dev-query")
	values.Set("user", string(user))
	values.Set("auth_date", fmt.Sprintf("%d", time.Now().Unix()))
	values.Set("hash", "mock")
	return values.Encode()
}
