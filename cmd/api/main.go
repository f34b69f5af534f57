package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"campuslink/internal/adapter/api"
	"campuslink/internal/adapter/api/handler"
	apimiddleware "campuslink/internal/adapter/api/middleware"
	"campuslink/internal/adapter/api/router"
	"campuslink/internal/adapter/repository"
	"campuslink/internal/infrastructure/firebase"
	"campuslink/internal/infrastructure/realtime"
	"campuslink/internal/usecase"
	"campuslink/pkg/config"
	"campuslink/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption

	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		logger.Info("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient)
	courseRepo := repository.NewFirestoreCourseRepository(firestoreClient)
	assignmentRepo := repository.NewFirestoreAssignmentRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)

	hub := realtime.NewHub()
	sessionManager := usecase.NewSessionManager(hub, messageRepo, userRepo, courseRepo, usecase.MessagingOptions{
		HistoryWindow:    cfg.MessageHistoryWindow,
		MaxContentLength: cfg.MaxMessageLength,
	})

	userUseCase := usecase.NewUserUseCase(userRepo)
	courseUseCase := usecase.NewCourseUseCase(courseRepo, userRepo)
	assignmentUseCase := usecase.NewAssignmentUseCase(assignmentRepo, courseRepo)
	dashboardUseCase := usecase.NewDashboardUseCase(userRepo, courseRepo, assignmentUseCase, sessionManager)

	handler.Setup(userUseCase, courseUseCase, assignmentUseCase, dashboardUseCase, sessionManager)
	handler.SetupHealthHandler(firebaseAuthClient)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(apimiddleware.GeneralRateLimit())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	roleMiddleware := apimiddleware.NewRoleMiddleware(userRepo)

	wsHandler := handler.NewWebSocketHandler(sessionManager, userUseCase, firebaseAuthClient)

	router.Setup(e, authMiddleware, roleMiddleware)
	router.SetupWebSocketRouter(e, wsHandler)

	logger.Info("Starting %s server on port %s...", cfg.Environment, cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
