package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"capsolver/pkg/authtoken"
	"capsolver/pkg/envfile"
)

// Prints a bearer token for the /attempts endpoint, signed with JWT_SECRET.
func main() {
	sub := flag.String("sub", "", "token subject (operator name)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()
	if *sub == "" {
		fmt.Println("usage: go run ./cmd/mint_token -sub <name> [-ttl 24h]")
		os.Exit(2)
	}
	if err := envfile.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET not set; export and retry")
		os.Exit(2)
	}
	token, err := authtoken.Sign([]byte(secret), *sub, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
