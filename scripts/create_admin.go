package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/lawchain/lawchain-api/config"
	"github.com/lawchain/lawchain-api/databases"
	"github.com/lawchain/lawchain-api/models"
)

// Bootstraps an admin identity so the admin console has a login before any
// users exist. Usage:
//
//	go run scripts/create_admin.go -address 0xadmin -email admin@lawchain.io -password <secret>
func main() {
	address := flag.String("address", "", "admin wallet address")
	email := flag.String("email", "", "admin login email")
	name := flag.String("name", "LawChain Admin", "display name")
	password := flag.String("password", "", "admin login password")
	flag.Parse()

	if *address == "" || *email == "" || *password == "" {
		fmt.Println("Usage: go run scripts/create_admin.go -address <addr> -email <email> -password <secret>")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("failed to hash password: %v\n", err)
		os.Exit(1)
	}

	conf := config.New()
	client, err := databases.NewClient(conf)
	if err != nil {
		fmt.Printf("failed to create mongo client: %v\n", err)
		os.Exit(1)
	}
	if err := client.Connect(); err != nil {
		fmt.Printf("failed to connect to mongo: %v\n", err)
		os.Exit(1)
	}
	users := databases.NewUserDatabase(databases.NewDatabase(conf, client))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	existing, err := users.CountDocuments(ctx, bson.M{"user.address": *address})
	if err != nil {
		fmt.Printf("failed to check existing identity: %v\n", err)
		os.Exit(1)
	}
	if existing > 0 {
		fmt.Printf("identity %s already exists, nothing to do\n", *address)
		return
	}

	now := time.Now().UTC()
	_, err = users.InsertOne(ctx, models.User{
		ID: primitive.NewObjectID(),
		Details: models.UserDetails{
			Address:      *address,
			Name:         *name,
			Email:        *email,
			Role:         models.RoleAdmin,
			IsRegistered: true,
			IsApproved:   true,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	})
	if err != nil {
		fmt.Printf("failed to insert admin identity: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("admin identity %s created\n", *address)
}
