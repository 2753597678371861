package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CarLogiLine/CarLogiLine/internal/common/config"
	"github.com/CarLogiLine/CarLogiLine/internal/common/db"
	"github.com/CarLogiLine/CarLogiLine/internal/common/logger"
	"github.com/CarLogiLine/CarLogiLine/internal/reminder"
	"github.com/joho/godotenv"
)

var (
	configPath = flag.String("config", "configs/reminder-job.json", "配置文件路径")
	runOnce    = flag.Bool("once", false, "只跑一轮提醒后退出")
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

	job := reminder.NewJob(
		reminder.NewSelector(gormDB),
		reminder.NewLogNotifier(log),
		log,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *runOnce {
		sent, err := job.RunOnce(ctx, time.Now())
		if err != nil {
			log.Fatalf("reminder run failed: %v", err)
		}
		log.Infof("reminder run done, sent=%d", sent)
		return
	}

	if err := job.Run(ctx, cfg.Reminder.Hour, cfg.Reminder.Minute); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("reminder job exited with error: %v", err)
		os.Exit(1)
	}
	log.Info("reminder job stopped")
}
