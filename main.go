package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"kidala/auth"
	"kidala/config"
	"kidala/database"
	"kidala/handlers"
	"kidala/logger"
	"kidala/middleware"
	"kidala/models"
	"kidala/repositories"
	"kidala/services"
	"kidala/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("starting kidala service")

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	if err := database.InitMySQL(&cfg.Database); err != nil {
		log.Fatalf("init mysql failed: %v", err)
	}
	defer database.Close()

	if err := database.DB.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.File{},
	); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	log.Println("database migration completed")

	if err := database.InitRedis(&cfg.Redis); err != nil {
		log.Fatalf("init redis failed: %v", err)
	}

	blobs, err := storage.NewBlobStore(filepath.Join(cfg.Storage.BasePath, "files"))
	if err != nil {
		log.Fatalf("init blob store failed: %v", err)
	}
	thumbDir := filepath.Join(cfg.Storage.BasePath, "thumbs")
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		log.Fatalf("create thumbnail dir failed: %v", err)
	}

	issuer := auth.NewTokenIssuer(cfg.Auth.UserSecret, cfg.Auth.AdminSecret)

	repoContainer := repositories.NewGormRepositories(database.DB, database.RedisClient).BuildContainer()
	serviceContainer := services.NewContainer(repoContainer, blobs, thumbDir, issuer)
	handlers.SetServices(serviceContainer)

	r := gin.Default()
	r.MaxMultipartMemory = cfg.Storage.MaxUploadSize
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestLogger())
	setupRoutes(r, issuer)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("server listening on http://%s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server start failed: %v", err)
	}
}

func setupRoutes(r *gin.Engine, issuer *auth.TokenIssuer) {
	defaultAccess := middleware.TokenCheck(issuer, middleware.AccessDefault)
	adminAccess := middleware.TokenCheck(issuer, middleware.AccessAdmin)

	r.GET("/api/health", handlers.HealthCheck)

	r.POST("/upload", defaultAccess, handlers.Upload)
	r.POST("/make-private", defaultAccess, handlers.MakePrivate)
	r.GET("/api/files", defaultAccess, handlers.GetAllFiles)
	r.GET("/api/tags", defaultAccess, handlers.GetAllTags)

	admin := r.Group("/admin")
	admin.POST("/login", handlers.Login)
	admin.GET("/getUser", defaultAccess, handlers.GetUser)
	admin.GET("/all_users", adminAccess, handlers.GetAllUsers)
	admin.POST("/delete", adminAccess, handlers.DeleteFile)
	admin.POST("/upload-ad", adminAccess, handlers.UploadAd)

	r.GET("/files/:hash/:name", handlers.ServeBlob)
	r.GET("/thumb/:hash", handlers.ServeThumbnail)
	r.GET("/:hash", handlers.DownloadRedirect)
}
