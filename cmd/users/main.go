package main

import (
	"roomly/internal/users/handler"
	"roomly/internal/users/repository"
	"roomly/internal/users/service"
	"roomly/pkg/app"
	"roomly/pkg/config"
)

const ServiceName = "users"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Users service")
	userService := initServices(cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewUserHandler(userService, cfg.Log))
	serverApp.OnShutdown(cfg.Client.GracefulShutdown)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.UserService {
	userRepo := repository.NewMongoUserRepository(cfg)
	userService := service.NewUserService(userRepo, cfg)

	cfg.Log.Info("User service initialized", "database", cfg.MongoDatabaseName)
	return userService
}
