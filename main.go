// Package main provides the entry point for the institution-services portal
// backend. It starts a Fiber based web server exposing the portal's JSON API:
// institutions and their services, citizen service requests with their status
// history, and the role-based permission system guarding it all. The
// application uses gorm for data persistence.
package main

import (
	"os"

	"github.com/GoServices-Admin/GoServices-Admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
