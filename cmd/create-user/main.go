// CLI tool to create a user with a bcrypt-hashed password and a default profile.
// Usage: go run ./cmd/create-user
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lg/calorie-tracker-api/internal/config"
	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/store/driver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	st, err := driver.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label + ": ")
		s, _ := reader.ReadString('\n')
		return strings.TrimSpace(s)
	}

	username := prompt("Username")
	email := prompt("Email")
	password := prompt("Password")
	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "Username and password are required")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}

	u, err := st.CreateUser(ctx, model.User{
		Username:  username,
		Email:     email,
		Password:  string(hash),
		AuthToken: uuid.New().String(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", u.ID)
	fmt.Printf("  Username:   %s\n", u.Username)
	fmt.Printf("  Auth Token: %s\n", u.AuthToken)
}
