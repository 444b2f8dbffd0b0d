// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the UserCenter CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usercenter",
		Short: "UserCenter - account lifecycle service",
		Long: `UserCenter is an account lifecycle service: registration with strict
validation, credential login with server-side sessions, and admin-gated
search and deletion over an HTTP JSON API.`,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())

	return cmd
}
