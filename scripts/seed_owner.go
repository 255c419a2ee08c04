package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/khoahotran/program-catalog/pkg/auth"
)

// Seeds an admin account. Re-running updates the password and role.
func main() {
	fmt.Println("adding admin into database...")

	err := godotenv.Load()
	if err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	dsn := os.Getenv("DB_DSN")
	email := os.Getenv("OWNER_EMAIL")
	username := os.Getenv("OWNER_USERNAME")
	password := os.Getenv("OWNER_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("OWNER_EMAIL and OWNER_PASSWORD are required")
	}
	if username == "" {
		username = "admin"
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	query := `
		INSERT INTO users (id, email, username, password_hash, role)
		VALUES ($1, $2, $3, $4, 'admin')
		ON CONFLICT (email) DO UPDATE SET password_hash = $4, role = 'admin'
	`
	_, err = pool.Exec(context.Background(), query, uuid.New(), email, username, hash)
	if err != nil {
		log.Fatalf("cannot add user: %v", err)
	}

	fmt.Printf("added or updated admin '%s' successfully!\n", email)
}
