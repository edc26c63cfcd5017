package main

import (
	"log"

	"authgate/internal/app"
)

// @title           Authgate API
// @version         1.0
// @description     User-identity backend: registration, password login, OTP verification, password reset and federated login.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
