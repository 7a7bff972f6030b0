// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/landolt/gomoku-server/internal/auth"
	"github.com/landolt/gomoku-server/internal/handlers"
)

func main() {
	auth.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	srv := handlers.NewGameServer(logger)
	srv.StrictWins = os.Getenv("STRICT_WINS") == "1"

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s (strict wins: %v)", addr, srv.StrictWins)
	if err := http.ListenAndServe(addr, srv.RegisterRoutes()); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
