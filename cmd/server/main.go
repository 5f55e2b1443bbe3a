package main

import (
	"log/slog"
	"os"

	"greenleaf/internal/app"
)

// @title                       GreenLeaf Leads API
// @version                     1.0
// @description                 Приём заявок с сайта и работа с ними операторов.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := app.Run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
