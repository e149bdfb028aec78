// Command tokengen mints a capability token for manual testing and for
// wiring external collaborators (generation pipeline, UI backend) to the
// API. The secret and validity come from the server configuration so the
// token matches what the server verifies.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mediaplanhq/campaignstore/internal/server/auth"
	"github.com/mediaplanhq/campaignstore/internal/server/config"
)

func main() {
	tenantID := flag.String("tenant", "", "tenant id to scope the token to")
	actorID := flag.String("actor", "", "acting user id")
	secret := flag.String("secret", "", "HMAC secret (defaults to the server's configured key)")
	flag.Parse()

	if *tenantID == "" || *actorID == "" {
		fmt.Fprintln(os.Stderr, "usage: tokengen -tenant <id> -actor <id> [-secret <key>]")
		os.Exit(2)
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	if *secret == "" {
		*secret = cfg.SecretKey
	}

	tok, err := auth.GenerateToken(*tenantID, *actorID, []byte(*secret), cfg.TokenValidityDuration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(tok)
}
