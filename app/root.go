// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "go-services-admin",
	Short: "GoServices-Admin is the institution-services portal backend",
	Long: `GoServices-Admin is the backend of a multi-tenant institution-services
portal: institutions publish services, citizens file service requests, and
role-based permissions decide who may do what within each institution.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
