package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/internal/repository"
	"github.com/noah-isme/course-feedback-api/internal/service"
	"github.com/noah-isme/course-feedback-api/pkg/config"
	"github.com/noah-isme/course-feedback-api/pkg/database"
	"github.com/noah-isme/course-feedback-api/pkg/logger"
)

// create-user provisions a user and prints their login code. It is how the
// first admin gets into a fresh deployment.
func main() {
	name := flag.StringP("name", "n", "", "display name of the new user")
	role := flag.StringP("role", "r", string(models.RoleAdmin), "STUDENT, TEACHER or ADMIN")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "usage: create-user --name <name> [--role ADMIN]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	codes := service.NewCodeService(repository.NewLoginCodeRepository(db), validator.New(), logr, nil, cfg.LoginCodes)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	provisioned, err := codes.ProvisionUser(ctx, models.ProvisionUserRequest{Name: *name, Role: *role})
	if err != nil {
		logr.Fatal("provision user", zap.Error(err))
	}

	fmt.Printf("user:       %s (%s)\n", provisioned.User.Name, provisioned.User.Role)
	fmt.Printf("id:         %s\n", provisioned.User.ID)
	fmt.Printf("login code: %s\n", provisioned.LoginCode)
}
