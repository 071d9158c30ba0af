package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"conduit/config"
	database "conduit/db"
	natsClient "conduit/nats"
	"conduit/pkg/jwt"
	"conduit/pkg/password"
	"conduit/publisher"
	"conduit/repository"
	"conduit/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	dbCfg, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatalf("Failed to load database config: %v", err)
	}

	authCfg, err := config.LoadAuthConfig()
	if err != nil {
		log.Fatalf("Failed to load auth config: %v", err)
	}

	dbConn, err := database.NewConnection(database.Config{
		Host:         dbCfg.Host,
		Port:         dbCfg.Port,
		User:         dbCfg.User,
		Password:     dbCfg.Password,
		DBName:       dbCfg.DBName,
		SSLMode:      dbCfg.SSLMode,
		MaxOpenConns: dbCfg.MaxOpenConns,
		MaxIdleConns: dbCfg.MaxIdleConns,
		MaxLifetime:  dbCfg.MaxLifetime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbConn.Close()

	log.Println("Successfully connected to database")

	// Event publishing is best-effort; the domain services run without it.
	var eventPublisher *publisher.EventPublisher
	natsCfg := config.LoadNATSConfig()
	nats, err := natsClient.NewClient(natsClient.Config{
		URL:           natsCfg.URL,
		MaxReconnects: natsCfg.MaxReconnects,
		ReconnectWait: natsCfg.ReconnectWait,
		ClientID:      natsCfg.ClientID,
	})
	if err != nil {
		log.Printf("NATS unavailable, events disabled: %v", err)
	} else {
		defer nats.Close()
		eventPublisher = publisher.NewEventPublisher(nats)
	}

	tokens := jwt.NewManager([]byte(authCfg.JWTSigningKey))
	passwords := password.NewHasher(password.DefaultParams(), authCfg.PasswordWorkers)
	defer passwords.Close()

	clock := service.Clock(time.Now)

	userRepo := repository.NewUserRepository(dbConn.DB)
	articleRepo := repository.NewArticleRepository(dbConn.DB)
	commentRepo := repository.NewCommentRepository(dbConn.DB)

	app := service.Services{
		Users:    service.NewUserService(userRepo, tokens, passwords, clock, eventPublisher),
		Profiles: service.NewProfileService(userRepo, tokens, clock, eventPublisher),
		Articles: service.NewArticleService(articleRepo, tokens, clock, eventPublisher),
		Comments: service.NewCommentService(commentRepo, articleRepo, tokens, clock, eventPublisher),
	}

	// The transport layer (HTTP routing, serialization) mounts on top of app.
	log.Printf("conduit domain services initialized: %T", app)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("shutting down")
}
