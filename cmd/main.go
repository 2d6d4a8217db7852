package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bambufarm_v1_202608/internal/config"
	"bambufarm_v1_202608/internal/controller"
	"bambufarm_v1_202608/internal/middleware"
	"bambufarm_v1_202608/internal/model"
	"bambufarm_v1_202608/internal/repository"
	"bambufarm_v1_202608/internal/router"
	"bambufarm_v1_202608/internal/service"
	"bambufarm_v1_202608/internal/task"
	"bambufarm_v1_202608/pkg/database"
	"bambufarm_v1_202608/pkg/logger"
)

func main() {
	// 1. 加载配置
	cfg := config.Load()

	// 2. 初始化日志
	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "bambufarm")
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zapLogger.Sync()

	// 3. 初始化数据库
	db := initDatabase(cfg)

	// 4. 初始化依赖
	deps := initDependencies(cfg, db, zapLogger)

	// 5. 启动定时任务
	statusTask := task.NewStatusRefreshTask(deps.Services.Printer, zapLogger)
	if err := statusTask.Start(cfg.Status.RefreshInterval); err != nil {
		log.Fatalf("启动定时任务失败: %v", err)
	}

	// 6. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers.User, deps.Controllers.Printer, deps.Controllers.Cloud)

	// 7. 启动服务
	startServer(cfg, r, func() {
		statusTask.Stop()
		deps.Services.Printer.Shutdown()
	})
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	User    repository.UserRepository
	Printer repository.PrinterRepository
}

// Services 服务集合
type Services struct {
	User    *service.UserService
	Printer *service.PrinterService
	Cloud   *service.CloudService
	Storage service.GcodeStorage
}

// Controllers 控制器集合
type Controllers struct {
	User    *controller.UserController
	Printer *controller.PrinterController
	Cloud   *controller.CloudController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.DB.DSN,
		&model.SysUser{},
		&model.Printer{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB, zapLogger *zap.Logger) *Dependencies {
	// -------- 本地会话签名 --------
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
		Issuer:          "bambufarm",
	})

	// -------- Repo 层 --------
	repos := &Repositories{
		User:    repository.NewUserRepository(db),
		Printer: repository.NewPrinterRepository(db),
	}

	// -------- 存储 --------
	storage, err := service.NewGcodeStorage(&cfg.Storage)
	if err != nil {
		log.Fatalf("初始化文件库存储失败: %v", err)
	}

	// -------- Service 层 --------
	// 摄像头取帧走厂商私有协议，默认不注入实现
	services := &Services{
		User:    service.NewUserService(repos.User),
		Printer: service.NewPrinterService(repos.Printer, nil, zapLogger),
		Cloud:   service.NewCloudService(zapLogger),
		Storage: storage,
	}

	// -------- Controller 层 --------
	controllers := &Controllers{
		User:    controller.NewUserController(services.User),
		Printer: controller.NewPrinterController(services.Printer, services.Storage),
		Cloud:   controller.NewCloudController(services.Cloud),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// startServer 启动服务并等待退出信号
func startServer(cfg *config.Config, r *gin.Engine, onShutdown func()) {
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("收到退出信号，开始优雅关闭...")
	onShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务关闭异常: %v", err)
	}
	log.Println("服务已退出")
}
