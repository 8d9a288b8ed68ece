package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davidpoza/dps-toggl-api/handlers"
	"github.com/davidpoza/dps-toggl-api/logging"
	"github.com/davidpoza/dps-toggl-api/media"
	"github.com/davidpoza/dps-toggl-api/middleware"
	"github.com/davidpoza/dps-toggl-api/services"
	"github.com/davidpoza/dps-toggl-api/store"
	"github.com/davidpoza/dps-toggl-api/validation"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting toggl API...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoURI == "" || mongoDBName == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: MONGO_URI and MONGO_DB_NAME must be set.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	st := store.NewMongoStore(client.Database(mongoDBName))
	if err := st.EnsureIndexes(ctx); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: Failed to ensure indexes: %v", err)
	}

	validator, err := validation.New()
	if err != nil {
		logging.Logger.Fatalf("Event ID: SCHEMA_COMPILE_FAILED, Description: %v", err)
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	avatars, err := media.NewAvatarStore(uploadDir)
	if err != nil {
		logging.Logger.Fatalf("Event ID: MEDIA_STORE_FAILED, Description: %v", err)
	}

	consistencyService := services.NewConsistencyService(st)
	taskService := services.NewTaskService(st, consistencyService)
	projectService := services.NewProjectService(st)
	tagService := services.NewTagService(st)
	userService := services.NewUserService(st)
	authService := services.NewAuthService(st)
	reportService := services.NewReportService(st, taskService)

	authHandler := handlers.NewAuthHandler(authService, userService, validator)
	userHandler := handlers.NewUserHandler(userService, avatars, validator)
	taskHandler := handlers.NewTaskHandler(taskService, validator)
	projectHandler := handlers.NewProjectHandler(projectService, validator)
	tagHandler := handlers.NewTagHandler(tagService, validator)
	reportHandler := handlers.NewReportHandler(reportService)

	r := mux.NewRouter()

	r.HandleFunc("/api/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/authenticate", authHandler.Login).Methods(http.MethodPost)

	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(middleware.Auth(st))

	authed.HandleFunc("/refresh", authHandler.Refresh).Methods(http.MethodPost)

	authed.HandleFunc("/users", userHandler.GetUsers).Methods(http.MethodGet)
	authed.HandleFunc("/users/me", userHandler.GetMe).Methods(http.MethodGet)
	authed.HandleFunc("/users/{id}", userHandler.UpdateUser).Methods(http.MethodPut)
	authed.HandleFunc("/users/{id}", userHandler.DeleteUser).Methods(http.MethodDelete)
	authed.HandleFunc("/users/{id}/avatar", userHandler.UploadAvatar).Methods(http.MethodPost)

	authed.HandleFunc("/projects", projectHandler.CreateProject).Methods(http.MethodPost)
	authed.HandleFunc("/projects", projectHandler.GetProjects).Methods(http.MethodGet)
	authed.HandleFunc("/projects/{id}", projectHandler.GetProject).Methods(http.MethodGet)
	authed.HandleFunc("/projects/{id}", projectHandler.UpdateProject).Methods(http.MethodPut)
	authed.HandleFunc("/projects/{id}", projectHandler.DeleteProject).Methods(http.MethodDelete)

	authed.HandleFunc("/tags", tagHandler.CreateTag).Methods(http.MethodPost)
	authed.HandleFunc("/tags", tagHandler.GetTags).Methods(http.MethodGet)
	authed.HandleFunc("/tags/{id}", tagHandler.GetTag).Methods(http.MethodGet)
	authed.HandleFunc("/tags/{id}", tagHandler.UpdateTag).Methods(http.MethodPut)
	authed.HandleFunc("/tags/{id}", tagHandler.DeleteTag).Methods(http.MethodDelete)

	authed.HandleFunc("/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	authed.HandleFunc("/tasks", taskHandler.GetTasks).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/{id}", taskHandler.UpdateTask).Methods(http.MethodPut)
	authed.HandleFunc("/tasks/{id}", taskHandler.DeleteTask).Methods(http.MethodDelete)

	authed.HandleFunc("/reports", reportHandler.GetReport).Methods(http.MethodGet)

	// Stored avatars are served as-is.
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	serverPort := os.Getenv("PORT")
	if serverPort == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: PORT is not set in the environment variables.")
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, enableCORS(r)); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
