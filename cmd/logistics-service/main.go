package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/CarLogiLine/CarLogiLine/internal/car"
	"github.com/CarLogiLine/CarLogiLine/internal/client"
	"github.com/CarLogiLine/CarLogiLine/internal/common/config"
	"github.com/CarLogiLine/CarLogiLine/internal/common/db"
	"github.com/CarLogiLine/CarLogiLine/internal/common/logger"
	"github.com/CarLogiLine/CarLogiLine/internal/common/server"
	"github.com/CarLogiLine/CarLogiLine/internal/common/tracing"
	"github.com/CarLogiLine/CarLogiLine/internal/container"
	"github.com/CarLogiLine/CarLogiLine/internal/invoice"
	"github.com/CarLogiLine/CarLogiLine/internal/payment"
	"github.com/CarLogiLine/CarLogiLine/internal/warehouse"
	"github.com/joho/godotenv"
)

var (
	configPath = flag.String("config", "configs/logistics-service.json", "配置文件路径")
)

func main() {
	flag.Parse()

	// 本地开发用 .env，缺失则忽略
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 初始化数据库
	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&client.Client{},
		&warehouse.Warehouse{},
		&container.Container{},
		&car.Car{},
		&payment.Payment{},
		&invoice.Invoice{},
	); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	carSvc := car.NewService(car.NewRepo(gormDB))
	containerSvc := container.NewService(gormDB)
	paymentSvc := payment.NewService(payment.NewRepo(gormDB))
	invoiceSvc := invoice.NewService(gormDB)

	// 启动统一的 HTTP 服务模板
	if err := server.RunHTTPServer(cfg, log, func(mux *http.ServeMux) error {
		client.NewHTTPHandler(client.NewRepo(gormDB), log).Register(mux)
		warehouse.NewHTTPHandler(warehouse.NewRepo(gormDB), log).Register(mux)
		car.NewHTTPHandler(carSvc, log).Register(mux)
		container.NewHTTPHandler(containerSvc, log).Register(mux)
		payment.NewHTTPHandler(paymentSvc, log).Register(mux)
		invoice.NewHTTPHandler(invoiceSvc, log).Register(mux)
		return nil
	}); err != nil {
		log.Fatalf("logistics-service exited with error: %v", err)
	}
}
