package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/bereal1995/jotrends-server/internal/repository"
	mysqlRepo "github.com/bereal1995/jotrends-server/internal/repository/mysql"
	redisCache "github.com/bereal1995/jotrends-server/internal/repository/redis"
	"github.com/bereal1995/jotrends-server/internal/search"
	"github.com/bereal1995/jotrends-server/internal/workers"

	"github.com/bereal1995/jotrends-server/domain"
	"github.com/bereal1995/jotrends-server/internal/rest"
	"github.com/bereal1995/jotrends-server/internal/rest/middleware"
	"github.com/bereal1995/jotrends-server/internal/usecase/bookmark"
	"github.com/bereal1995/jotrends-server/internal/usecase/comment"
	"github.com/bereal1995/jotrends-server/internal/usecase/item"
	"github.com/bereal1995/jotrends-server/internal/usecase/user"
	"github.com/joho/godotenv"
)

const (
	defaultTimeout     = 30
	defaultAddress     = ":9090"
	defaultCacheDB     = 0
	dbMaxRetry         = 10
	dbRetryIntervalSec = 2
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
}

func main() {
	//prepare database
	dbHost := os.Getenv("DATABASE_HOST")
	dbPort := os.Getenv("DATABASE_PORT")
	dbUser := os.Getenv("DATABASE_USER")
	dbPass := os.Getenv("DATABASE_PASS")
	dbName := os.Getenv("DATABASE_NAME")
	connection := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", dbUser, dbPass, dbHost, dbPort, dbName)
	val := url.Values{}
	val.Add("parseTime", "1")
	val.Add("loc", "UTC")
	dsn := fmt.Sprintf("%s?%s", connection, val.Encode())

	var (
		db  *gorm.DB
		err error
	)

	for i := 0; i < dbMaxRetry; i++ {
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Printf("failed to open connection to database (attempt %d/%d): %v", i+1, dbMaxRetry, err)
		} else {
			sqlDB, err := db.DB()
			if err != nil {
				log.Printf("failed to get sql.DB from gorm.DB (attempt %d/%d): %v", i+1, dbMaxRetry, err)
				continue
			}
			err = sqlDB.Ping()
			if err == nil {
				break
			}
			log.Printf("failed to ping database (attempt %d/%d): %v", i+1, dbMaxRetry, err)
			_ = sqlDB.Close()
		}

		time.Sleep(dbRetryIntervalSec * time.Second)
	}

	if err != nil {
		log.Fatal("could not connect to database after retries:", err)
	}

	defer func() {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("got error when getting sql.DB from gorm.DB", err)
		}
		if err := sqlDB.Close(); err != nil {
			log.Fatal("got error when closing the DB connection", err)
		}
	}()

	// prepare cache
	cacheHost := os.Getenv("CACHE_HOST")
	cachePort := os.Getenv("CACHE_PORT")
	cachePass := os.Getenv("CACHE_PASS")
	cacheDBStr := os.Getenv("CACHE_DB")
	cacheDB, err := strconv.Atoi(cacheDBStr)
	if err != nil {
		log.Println("failed to parse cacheDB, using default cacheDB")
		cacheDB = defaultCacheDB
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cacheHost + ":" + cachePort,
		Password: cachePass,
		DB:       cacheDB,
	})
	defer func() {
		err = client.Close()
		if err != nil {
			log.Fatal("got error when closing the cache connection", err)
		}
	}()

	_, err = client.Ping(context.Background()).Result()
	if err != nil {
		log.Fatal("failed to open connection to cache", err)
		return
	}

	// prepare gin
	route := gin.Default()
	route.Use(middleware.CORS())
	timeoutStr := os.Getenv("CONTEXT_TIMEOUT")
	timeout, err := strconv.Atoi(timeoutStr)
	if err != nil {
		log.Println("failed to parse timeout, using default timeout")
		timeout = defaultTimeout
	}
	timeoutContext := time.Duration(timeout) * time.Second
	route.Use(middleware.SetRequestContextWithTimeout(timeoutContext))

	// Prepare Repository
	userRepo := mysqlRepo.NewUserRepository(db)
	commentRepo := mysqlRepo.NewCommentRepository(db)
	bookmarkRepo := mysqlRepo.NewBookmarkRepository(db)

	// Item相关的三层架构
	// 1. DB层
	itemDBRepo := mysqlRepo.NewItemRepository(db)
	// 2. Cache层
	itemCache := redisCache.NewItemCache(client)
	// 3. Repository协调层
	itemRepo := repository.NewItemRepository(itemDBRepo, itemCache, userRepo)

	// prepare search index, disabled unless an endpoint is configured
	var searchIndex domain.SearchIndex
	if endpoint := os.Getenv("SEARCH_ENDPOINT"); endpoint != "" {
		searchIndex = search.NewHTTPIndex(endpoint, nil)
	} else {
		searchIndex = search.NewDisabledIndex()
	}

	// Start workers
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recalcWorker := workers.NewRecalcWorker(itemRepo, commentRepo)
	go recalcWorker.Start(ctx)

	searchSyncWorker := workers.NewSearchSyncWorker(searchIndex)
	go searchSyncWorker.Start(ctx)

	// Build service Layer
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	jwtTTLStr := os.Getenv("JWT_EXPIRE_HOURS")
	jwtTTL, err := strconv.Atoi(jwtTTLStr)
	if err != nil {
		log.Println("failed to parse JWT TTL, using default 24 hours")
		jwtTTL = 24
	}
	itemSvc := item.NewService(itemRepo, userRepo, recalcWorker, searchSyncWorker)
	userSvc := user.NewService(userRepo, jwtSecret, time.Duration(jwtTTL)*time.Hour)
	commentSvc := comment.NewService(commentRepo, itemRepo, userRepo, recalcWorker)
	bookmarkSvc := bookmark.NewService(bookmarkRepo, itemRepo, userRepo)

	itemHandler := rest.NewItemHandler(itemSvc)
	userHandler := rest.NewUserHandler(userSvc)
	commentHandler := rest.NewCommentHandler(commentSvc)
	bookmarkHandler := rest.NewBookmarkHandler(bookmarkSvc)

	authMiddleware := middleware.AuthMiddleware(string(jwtSecret))
	optionalAuth := middleware.OptionalAuthMiddleware(string(jwtSecret))

	// Register routes
	api := route.Group("/api")

	api.POST("/auth/register", userHandler.Register)
	api.POST("/auth/login", userHandler.Login)

	// read endpoints accept anonymous callers but stamp flags for logged-in ones
	public := api.Group("/")
	public.Use(optionalAuth)
	{
		public.GET("/items", itemHandler.List)
		public.GET("/items/:id", itemHandler.GetByID)
		public.GET("/items/:id/comments", commentHandler.List)
		public.GET("/items/:id/comments/:commentId", commentHandler.GetByID)
	}

	authorized := api.Group("/")
	authorized.Use(authMiddleware)
	{
		authorized.GET("/me", userHandler.Me)

		authorized.POST("/items", itemHandler.Store)
		authorized.PUT("/items/:id", itemHandler.Update)
		authorized.DELETE("/items/:id", itemHandler.Delete)
		authorized.POST("/items/:id/likes", itemHandler.Like)
		authorized.DELETE("/items/:id/likes", itemHandler.Unlike)

		authorized.POST("/items/:id/comments", commentHandler.Store)
		authorized.PUT("/items/:id/comments/:commentId", commentHandler.Update)
		authorized.DELETE("/items/:id/comments/:commentId", commentHandler.Delete)
		authorized.POST("/items/:id/comments/:commentId/likes", commentHandler.Like)
		authorized.DELETE("/items/:id/comments/:commentId/likes", commentHandler.Unlike)

		authorized.GET("/bookmarks", bookmarkHandler.List)
		authorized.POST("/bookmarks", bookmarkHandler.Store)
		authorized.DELETE("/bookmarks/:itemId", bookmarkHandler.Delete)
	}

	// Start Server
	address := os.Getenv("SERVER_ADDRESS")
	if address == "" {
		address = defaultAddress
	}
	srv := &http.Server{
		Addr:    address,
		Handler: route,
	}
	go func() {
		log.Printf("Server is running on %s\n", address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err) // nolint
		}
	}()

	// shutdown
	<-ctx.Done()
	log.Println("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Waiting for workers to cleanup...")
	time.Sleep(2 * time.Second)

	log.Println("Server exiting")
}
