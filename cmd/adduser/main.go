// cmd/adduser/main.go
// Creates or updates an API user.
//
// Usage:
//
//	go run ./cmd/adduser -username range -password testing
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/padraicbc/thunderbolt/config"
	"github.com/padraicbc/thunderbolt/db"
	"github.com/padraicbc/thunderbolt/handlers"
)

func main() {
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "plain-text password (required)")
	flag.Parse()

	hash, err := handlers.HashPassword(*username, *password)
	if err != nil {
		log.Fatal("adduser: ", err)
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bdb, err := db.Setup(ctx, cfg)
	if err != nil {
		log.Fatal("db: ", err)
	}
	defer bdb.Close()

	if err := db.CreateTables(ctx, bdb); err != nil {
		log.Fatal("create tables: ", err)
	}
	if err := db.NewUsers(bdb).Upsert(ctx, *username, hash); err != nil {
		log.Fatal("insert user: ", err)
	}

	fmt.Printf("user %q saved\n", *username)
}
