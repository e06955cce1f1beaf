// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Backend connectivity check.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"
)

// HandleStatus checks backend connectivity and prints a summary.
func HandleStatus(ctx context.Context, args Args) int {
	client, cfg, err := newBackendClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
		return ExitError
	}

	start := time.Now()
	health, healthErr := client.Health(ctx)
	latency := time.Since(start)

	authOK := false
	var userName string
	if validation, err := client.ValidateAuth(ctx); err == nil {
		authOK = true
		userName = validation.User.DisplayName()
	}

	if args.JSON {
		outputJSON(map[string]interface{}{
			"backend":    cfg.Backend.URL,
			"reachable":  healthErr == nil,
			"latency_ms": latency.Milliseconds(),
			"auth_valid": authOK,
		})
		if healthErr != nil || !authOK {
			return ExitError
		}
		return ExitOK
	}

	fmt.Println(TitleStyle.Render("Ploymind status"))
	fmt.Println(LabelStyle.Render("Backend") + ValueStyle.Render(cfg.Backend.URL))

	if healthErr != nil {
		fmt.Println(LabelStyle.Render("Health") + ErrorStyle.Render("unreachable: "+healthErr.Error()))
		return ExitError
	}
	fmt.Println(LabelStyle.Render("Health") + SuccessStyle.Render(health.Status) +
		DimStyle.Render(fmt.Sprintf("  (%dms)", latency.Milliseconds())))

	if authOK {
		fmt.Println(LabelStyle.Render("Auth") + SuccessStyle.Render("valid") +
			DimStyle.Render("  ("+userName+")"))
	} else {
		fmt.Println(LabelStyle.Render("Auth") + WarningStyle.Render("invalid or missing"))
		return ExitError
	}
	return ExitOK
}
