package app

import (
	"fmt"
	"log"
	"os"

	"github.com/campusgrid/campus-api/api"
	"github.com/campusgrid/campus-api/config"
	"github.com/campusgrid/campus-api/database"
	"github.com/campusgrid/campus-api/router"
	"github.com/campusgrid/campus-api/services/cron"
	"github.com/campusgrid/campus-api/services/storage"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		cronManager = cron.NewCronManager(store.GetDB())
		if err := cronManager.Start(); err != nil {
			log.Printf("Warning: Failed to start cron jobs: %v", err)
			// Don't fail the app, just log the warning
			cronManager = nil
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Object storage for room images; optional, image uploads are
	// rejected with 503 when unconfigured.
	var objectStore storage.ObjectStorage
	if getEnv.STORAGE_ACCESS_KEY != "" && getEnv.STORAGE_SECRET_KEY != "" && getEnv.STORAGE_BUCKET != "" {
		spaces, err := storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: getEnv.STORAGE_ACCESS_KEY,
			SecretKey: getEnv.STORAGE_SECRET_KEY,
			Bucket:    getEnv.STORAGE_BUCKET,
			Region:    getEnv.STORAGE_REGION,
			Endpoint:  getEnv.STORAGE_ENDPOINT,
			CDNURL:    getEnv.STORAGE_CDN_URL,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v. Image uploads will be rejected.", err)
		} else {
			objectStore = spaces
		}
	} else {
		log.Println("Warning: Object storage is not configured. Image uploads will be rejected.")
	}

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes
	router.SetupRoutes(app, store, objectStore)

	// Get the PORT & Start the Server
	return server.Run()
}
