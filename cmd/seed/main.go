package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"voiceclone/internal/auth"
	"voiceclone/internal/config"
	"voiceclone/internal/db"
	apperrors "voiceclone/internal/errors"
	"voiceclone/internal/model"
	"voiceclone/internal/repository"
)

// seedOptions describes one account to provision. Credits < 0 leaves the
// balance of an existing account unchanged.
type seedOptions struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Admin     bool
	Credits   int
}

func main() {
	var opts seedOptions
	flag.StringVar(&opts.Username, "username", "", "account to create or update (required)")
	flag.StringVar(&opts.Password, "password", "", "password for a new account, or a new password for an existing one")
	flag.StringVar(&opts.FirstName, "first-name", "Admin", "first name for a new account")
	flag.StringVar(&opts.LastName, "last-name", "User", "last name for a new account")
	flag.BoolVar(&opts.Admin, "admin", false, "mark the account as admin (unlimited credits)")
	flag.IntVar(&opts.Credits, "credits", -1, "set the credit balance")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	user, created, err := seed(context.Background(), repository.NewUserRepository(gormDB), opts, cfg.SignupCredits)
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	action := "Updated"
	if created {
		action = "Created"
	}
	log.Printf("%s user %q (admin=%t, credits=%d)", action, user.Username, user.IsAdmin, user.Credits)
}

// seed creates the account if it does not exist, otherwise applies the
// requested changes to it.
func seed(ctx context.Context, repo repository.UserRepository, opts seedOptions, signupCredits int) (*model.User, bool, error) {
	if opts.Username == "" {
		return nil, false, errors.New("username is required")
	}

	user, err := repo.FindByUsername(ctx, opts.Username)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		if opts.Password == "" {
			return nil, false, errors.New("password is required for a new account")
		}
		hash, err := auth.HashPassword(opts.Password)
		if err != nil {
			return nil, false, fmt.Errorf("hash password: %w", err)
		}
		user = &model.User{
			Username:     opts.Username,
			PasswordHash: hash,
			FirstName:    opts.FirstName,
			LastName:     opts.LastName,
			IsAdmin:      opts.Admin,
			Credits:      signupCredits,
		}
		if opts.Credits >= 0 {
			user.Credits = opts.Credits
		}
		if err := repo.Create(ctx, user); err != nil {
			return nil, false, fmt.Errorf("create user: %w", err)
		}
		return user, true, nil
	case err != nil:
		return nil, false, fmt.Errorf("find user: %w", err)
	}

	if opts.Admin {
		user.IsAdmin = true
	}
	if opts.Credits >= 0 {
		user.Credits = opts.Credits
	}
	if opts.Password != "" {
		hash, err := auth.HashPassword(opts.Password)
		if err != nil {
			return nil, false, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if err := repo.Update(ctx, user); err != nil {
		return nil, false, fmt.Errorf("update user: %w", err)
	}
	return user, false, nil
}
