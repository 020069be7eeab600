// Command bankmockd runs the in-memory mock banking API, so the client and
// its UI layers can be developed without the real service.
package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/brkygngr/banking-client/internal/mockapi"
	"github.com/brkygngr/banking-client/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", ":8080", "listen address")
	secret := flag.String("secret", os.Getenv("BANKMOCK_SECRET"), "HMAC secret for issued tokens")
	flag.Parse()

	log := logger.New(logger.LoggingConfig{Component: "bankmockd"})

	if *secret == "" {
		*secret = "bankmockd-dev-secret"
		log.Warn("no token secret configured, using the development default")
	}

	server := mockapi.New([]byte(*secret), log)
	log.Infof("mock banking API listening on %s", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
