// Command seed provisions the administrator account and marks tutors as
// verified. Run it after the server has applied the migrations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/oksasatya/online-school/config"
	"github.com/oksasatya/online-school/internal/application"
	"github.com/oksasatya/online-school/internal/container"
	"github.com/oksasatya/online-school/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	username := flag.String("admin-username", cfg.AdminUsername, "administrator username (ADMIN_USERNAME)")
	password := flag.String("admin-password", cfg.AdminPassword, "administrator password (ADMIN_PASSWORD)")
	verify := flag.String("verify-tutor", "", "comma-separated tutor usernames to mark as verified")
	flag.Parse()

	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	ctx := context.Background()

	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer c.Close()

	if *username != "" {
		if len(*password) < 8 {
			log.Fatal("admin password must be at least 8 characters long")
		}
		acc, created, err := c.Service.ProvisionAdmin(ctx, *username, *password)
		if err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
		if created {
			fmt.Printf("seeded admin: id=%s username=%s\n", acc.User.ID, acc.User.Username)
		} else {
			fmt.Printf("admin %s already exists (id=%s)\n", acc.User.Username, acc.User.ID)
		}
	}

	for _, name := range strings.Split(*verify, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		err := c.Service.VerifyTutor(ctx, name)
		switch {
		case err == nil:
			fmt.Printf("verified tutor %s\n", name)
		case errors.Is(err, application.ErrUserNotFound), errors.Is(err, application.ErrNotTutor):
			fmt.Printf("skipped %s: %v\n", name, err)
		default:
			log.Fatalf("failed to verify %s: %v", name, err)
		}
	}
}
