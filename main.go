package main

import (
	"livestream-api/core/logger"
	"livestream-api/core/server"
)

// @title Livestream API
// @version 1.0
// @description Livestream reservation backend: capacity-constrained time slots, tags and owner profiles.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Fatal("Main:Run:Error", "error", err)
	}
}
