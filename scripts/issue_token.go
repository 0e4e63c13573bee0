package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/auth"
	"github.com/franciscosanchezn/gin-recipe-api/internal/config"
	"github.com/joho/godotenv"
)

// Issues a bearer token for the write endpoints using JWT_SECRET from the
// environment or .env. Usage: go run scripts/issue_token.go -sub alice -role editor
func main() {
	_ = godotenv.Load()

	subject := flag.String("sub", "dev-editor", "Token subject")
	role := flag.String("role", auth.RoleEditor, "Role claim (editor or admin)")
	ttl := flag.Duration("ttl", time.Duration(config.GetEnvAsType("TOKEN_TTL_HOURS", 24))*time.Hour, "Token lifetime, 0 for no expiry")
	flag.Parse()

	secret := config.GetEnvWithDefault("JWT_SECRET", "")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	token, err := auth.GenerateToken([]byte(secret), *subject, *role, *ttl)
	if err != nil {
		log.Fatal("Failed to issue token: ", err)
	}

	fmt.Printf("Token for '%s' with role '%s':\n%s\n", *subject, *role, token)
	fmt.Println("\nUse it for write requests:")
	fmt.Printf("curl -X POST http://localhost:8080/api/v1/categories \\\n")
	fmt.Printf("  -H 'Authorization: Bearer %s' \\\n", token)
	fmt.Printf("  -H 'Content-Type: application/json' \\\n")
	fmt.Printf("  -d '{\"name\":\"Snacks\"}'\n")
}
