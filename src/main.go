package main

import (
	_ "github.com/drive-clone/api/docs" // swagger docs
	"github.com/drive-clone/api/src/cmd"
)

// @title Drive Clone API
// @version 1.0
// @description File drive API with hierarchical folders, per-user storage quota and cookie or bearer sessions.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cmd.Execute()
}
