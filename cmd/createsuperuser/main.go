package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"recipe-api/internal/config"
	"recipe-api/internal/repository/sqlite"
	"recipe-api/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	emailFlag := flag.String("email", "", "superuser email (prompted when empty)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	tokenRepo := sqlite.NewTokenRepository(db)
	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := tokenRepo.Init(ctx); err != nil {
		logger.Fatalf("init token repository: %v", err)
	}

	users := service.NewUserService(userRepo, tokenRepo, cfg.Auth.BcryptCost, 0)

	email := strings.TrimSpace(*emailFlag)
	if email == "" {
		email = prompt("Email: ")
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		logger.Fatalf("read password: %v", err)
	}
	confirm, err := promptPassword("Password (again): ")
	if err != nil {
		logger.Fatalf("read password: %v", err)
	}
	if password != confirm {
		logger.Fatal("passwords do not match")
	}

	user, err := users.CreateSuperuser(ctx, email, password)
	if err != nil {
		logger.Fatalf("create superuser: %v", err)
	}

	logger.Infof("superuser %s created (id %d)", user.Email, user.ID)
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
