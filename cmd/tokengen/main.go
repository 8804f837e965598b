// Command tokengen mints an editor token for the study schedule write
// endpoints, signed with JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/iliyamo/study-ui/internal/config"
	"github.com/iliyamo/study-ui/internal/utils"
)

func main() {
	if err := config.LoadEnvFile(); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	subject := flag.String("sub", "editor", "token subject (editor name)")
	role := flag.String("role", utils.RoleEditor, "role claim")
	ttl := flag.Duration("ttl", 0, "token lifetime (default ACCESS_TOKEN_TTL_MIN minutes)")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("missing required env var: JWT_SECRET")
	}
	if *ttl <= 0 {
		*ttl = time.Duration(config.AccessTTLMinutes()) * time.Minute
	}
	tok, err := utils.NewAccessToken(secret, *subject, *role, *ttl)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(tok.Token)
	fmt.Fprintf(os.Stderr, "expires %s\n", tok.Exp.Format(time.RFC3339))
}
