package main

import (
	"roomly/internal/promocodes/handler"
	"roomly/internal/promocodes/repository"
	"roomly/internal/promocodes/service"
	"roomly/internal/promocodes/validator"
	"roomly/pkg/app"
	"roomly/pkg/config"
)

const ServiceName = "promocodes"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Promo Codes service")
	promoService := initServices(cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewPromoCodeHandler(promoService, cfg.Log))
	serverApp.OnShutdown(cfg.Client.GracefulShutdown)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.PromoCodeService {
	promoValidator := validator.NewPromoCodeValidator(cfg.Log)
	promoRepo := repository.NewMongoPromoCodeRepository(cfg)
	promoService := service.NewPromoCodeService(promoRepo, promoValidator, cfg)

	cfg.Log.Info("Promo code service initialized", "database", cfg.MongoDatabaseName)
	return promoService
}
