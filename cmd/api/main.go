package main

import (
	"pos/internal/config"
	"pos/internal/domain/model"
	"pos/internal/handler"
	"pos/internal/infra/db"
	"pos/internal/infra/logger"
	infraRepo "pos/internal/infra/repository"
	"pos/internal/server"
	"pos/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.Init(cfg.LogLevel, cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.StockMutation{},
		&model.Transaction{},
		&model.TransactionItem{},
		&model.Vendor{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.InventoryAdjustment{},
		&model.Sequence{},
	); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	mutationRepo := infraRepo.NewStockMutationGormRepository(gormDB)
	vendorRepo := infraRepo.NewVendorGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)

	//Usecase生成
	ledger := usecase.NewStockLedger(log)
	seq := usecase.NewSequenceGenerator()

	authUC := usecase.NewAuthUsecase(userRepo, cfg.JWTSecret)
	productUC := usecase.NewProductUsecase(productRepo, mutationRepo)
	saleUC := usecase.NewSaleUsecase(txManager, ledger, seq)
	poUC := usecase.NewPurchaseOrderUsecase(txManager, ledger, seq)
	adjustmentUC := usecase.NewAdjustmentUsecase(txManager, ledger, seq)
	vendorUC := usecase.NewVendorUsecase(vendorRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:          handler.NewAuthHandler(authUC),
		Product:       handler.NewProductHandler(productUC),
		Sale:          handler.NewSaleHandler(saleUC),
		PurchaseOrder: handler.NewPurchaseOrderHandler(poUC),
		Adjustment:    handler.NewAdjustmentHandler(adjustmentUC),
		Vendor:        handler.NewVendorHandler(vendorUC),
	}

	//Server起動
	log.Info("starting server", zap.String("port", cfg.Port))
	if err := server.Start(cfg, handlers); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
