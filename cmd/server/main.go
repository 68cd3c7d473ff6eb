package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"datastd-go/internal/config"
	"datastd-go/internal/handler"
	"datastd-go/internal/middleware"
	"datastd-go/internal/model"
	"datastd-go/internal/repository"
	"datastd-go/internal/service"
	"datastd-go/pkg/database"
	"datastd-go/pkg/embedding"
	"datastd-go/pkg/kafka"
	"datastd-go/pkg/log"
	"datastd-go/pkg/storage"
	"datastd-go/pkg/token"
	"datastd-go/pkg/tokenizer"
	"datastd-go/pkg/vectorstore"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 1. 初始化配置与日志
	config.Init(*configPath)
	cfg := config.Conf
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()

	// 2. 初始化基础设施
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)

	if err := database.DB.AutoMigrate(
		&model.WordRoot{},
		&model.StandardField{},
		&model.MappingTask{},
		&model.User{},
	); err != nil {
		log.Fatal("数据库表结构迁移失败", err)
	}

	// 3. 初始化向量库、embedding 模型与分词引擎
	store, err := vectorstore.New(cfg.Vector, cfg.Qdrant, cfg.Elasticsearch)
	if err != nil {
		log.Fatal("初始化向量库客户端失败", err)
	}
	embedder := embedding.NewService(
		embedding.NewClient(cfg.Embedding),
		cfg.Embedding.Dimensions,
		database.RDB,
		time.Duration(cfg.Embedding.CacheTTLHours)*time.Hour,
	)
	engine, err := tokenizer.NewEngine()
	if err != nil {
		log.Fatal("初始化分词引擎失败", err)
	}

	// 4. 组装仓储与服务
	rootRepo := repository.NewWordRootRepository(database.DB)
	fieldRepo := repository.NewStandardFieldRepository(database.DB)
	taskRepo := repository.NewMappingTaskRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)

	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)

	syncService := service.NewSyncService(embedder, store, rootRepo, fieldRepo, cfg.Vector, cfg.Kafka)
	rootService := service.NewWordRootService(rootRepo, fieldRepo, syncService, engine)
	fieldService := service.NewFieldService(fieldRepo, rootRepo, syncService)
	mappingService := service.NewMappingService(rootRepo, taskRepo, engine)
	searchService := service.NewSearchService(fieldRepo, embedder, store, cfg.Vector)
	exportService := service.NewExportService(rootRepo, fieldRepo, cfg.MinIO)
	userService := service.NewUserService(userRepo, jwtManager)

	// 5. 启动前置任务：默认管理员、分词词典、全量向量重建。
	// 向量重建失败直接退出，未完成重建前不对外提供检索。
	if err := userService.EnsureDefaultAdmin(); err != nil {
		log.Fatal("初始化默认管理员失败", err)
	}
	if err := rootService.ReloadVocabulary(); err != nil {
		log.Fatal("初始化分词词典失败", err)
	}
	if err := syncService.ResyncAll(context.Background()); err != nil {
		log.Fatal("启动期全量向量同步失败", err)
	}

	// 6. 启动补偿队列
	if cfg.Kafka.Enabled {
		kafka.InitProducer(cfg.Kafka)
		go kafka.StartConsumer(cfg.Kafka, syncService)
	}

	// 7. 注册路由并启动 HTTP 服务
	router := setupRouter(cfg, jwtManager,
		handler.NewAuthHandler(userService),
		handler.NewWordRootHandler(rootService),
		handler.NewFieldHandler(fieldService),
		handler.NewMappingHandler(mappingService),
		handler.NewSearchHandler(searchService),
		handler.NewExportHandler(exportService),
		userService,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Infof("服务启动, 监听端口 %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP 服务启动失败", err)
		}
	}()

	// 8. 优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("收到退出信号, 正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("服务关闭失败", err)
	}
	log.Info("服务已退出")
}

// setupRouter 注册全部路由：公开检索、认证、管理端。
func setupRouter(
	cfg config.Config,
	jwtManager *token.JWTManager,
	authHandler *handler.AuthHandler,
	rootHandler *handler.WordRootHandler,
	fieldHandler *handler.FieldHandler,
	mappingHandler *handler.MappingHandler,
	searchHandler *handler.SearchHandler,
	exportHandler *handler.ExportHandler,
	userService service.UserService,
) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())

	public := router.Group("/api/public")
	{
		public.GET("/health", searchHandler.Health)
		public.GET("/search", searchHandler.SearchFields)
		public.GET("/similar-roots", searchHandler.SimilarRoots)
		public.POST("/tasks", mappingHandler.SubmitTask)
	}

	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager, userService), middleware.AdminAuthMiddleware())
	{
		admin.POST("/roots", rootHandler.Create)
		admin.GET("/roots", rootHandler.List)
		admin.POST("/roots/batch", rootHandler.BatchImport)
		admin.DELETE("/roots/clear", rootHandler.ClearAll)
		admin.GET("/roots/:id", rootHandler.Get)
		admin.PUT("/roots/:id", rootHandler.Update)
		admin.DELETE("/roots/:id", rootHandler.Delete)

		admin.POST("/fields", fieldHandler.Create)
		admin.GET("/fields", fieldHandler.List)
		admin.DELETE("/fields/clear", fieldHandler.ClearAll)
		admin.GET("/fields/:id", fieldHandler.GetDetails)
		admin.PUT("/fields/:id", fieldHandler.Update)
		admin.DELETE("/fields/:id", fieldHandler.Delete)

		admin.GET("/suggest", mappingHandler.Suggest)

		admin.GET("/tasks", mappingHandler.ListTasks)
		admin.GET("/tasks/count", mappingHandler.CountUnprocessedTasks)
		admin.PUT("/tasks/:id", mappingHandler.ProcessTask)

		admin.POST("/export", exportHandler.Export)

		admin.GET("/users", authHandler.ListUsers)
		admin.POST("/users", authHandler.CreateUser)
		admin.PUT("/users/:id", authHandler.UpdateUserRole)
		admin.DELETE("/users/:id", authHandler.DeleteUser)
	}

	return router
}
