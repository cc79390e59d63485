package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campusgrid/campus-api/database"
	"github.com/campusgrid/campus-api/handlers"
	building_handlers "github.com/campusgrid/campus-api/handlers/building"
	college_handlers "github.com/campusgrid/campus-api/handlers/college"
	country_handlers "github.com/campusgrid/campus-api/handlers/country"
	room_handlers "github.com/campusgrid/campus-api/handlers/room"
	state_handlers "github.com/campusgrid/campus-api/handlers/state"
	university_handlers "github.com/campusgrid/campus-api/handlers/university"
	"github.com/campusgrid/campus-api/services/storage"
	"github.com/campusgrid/campus-api/utils/auth"
	"github.com/campusgrid/campus-api/utils/cache"
	"github.com/campusgrid/campus-api/utils/middleware"
)

func SetupRoutes(app *fiber.App, store database.Storage, objectStore storage.ObjectStorage) {
	// Mutating routes are open unless JWT_SECRET is set; with a secret
	// they require an admin token.
	requireAdmin := func(c *fiber.Ctx) error { return c.Next() }
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		jwtIssuer := os.Getenv("JWT_ISSUER")
		if jwtIssuer == "" {
			jwtIssuer = "campus-api"
		}

		jwtManager := auth.NewJWTManager(auth.JWTConfig{
			Secret: jwtSecret,
			Expiry: 24 * time.Hour,
			Issuer: jwtIssuer,
		})
		requireAdmin = middleware.NewAuthMiddleware(jwtManager).RequireAdmin()
	} else {
		log.Println("Warning: JWT_SECRET is not set, mutating routes are unprotected")
	}

	db := store.GetDB()

	// Bulk deletes get an extra per-IP limit backed by Redis. Without
	// Redis they fall back to the global rate limit only.
	guardBulk := func(c *fiber.Ctx) error { return c.Next() }
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Bulk delete throttling will be disabled.", err)
	} else {
		guardBulk = middleware.NewBulkGuard(redisCache).Limit()
	}

	countryHandler := country_handlers.NewCountryHandler(db)
	stateHandler := state_handlers.NewStateHandler(db)
	universityHandler := university_handlers.NewUniversityHandler(db)
	collegeHandler := college_handlers.NewCollegeHandler(db)
	buildingHandler := building_handlers.NewBuildingHandler(db)
	roomHandler := room_handlers.NewRoomHandler(db, objectStore)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, store)
	})

	// API v1 group
	api := app.Group("/v1")

	// Countries
	countries := api.Group("/country")
	countries.Get("/", countryHandler.ListCountries)
	countries.Post("/", requireAdmin, countryHandler.CreateCountry)
	// Literal segment, registered ahead of the :countryId routes.
	countries.Delete("/deletemany", requireAdmin, guardBulk, countryHandler.DeleteManyCountries)
	countries.Get("/:countryId", countryHandler.GetCountry)
	countries.Patch("/:countryId", requireAdmin, countryHandler.UpdateCountry)
	countries.Delete("/:countryId", requireAdmin, countryHandler.DeleteCountry)

	// States
	states := api.Group("/state")
	states.Get("/", stateHandler.ListStates)
	states.Post("/", requireAdmin, stateHandler.CreateState)
	states.Delete("/deletemany", requireAdmin, guardBulk, stateHandler.DeleteManyStates)
	states.Get("/:countryId/country", stateHandler.ListStatesByCountry)
	states.Get("/:stateId", stateHandler.GetState)
	states.Patch("/:stateId", requireAdmin, stateHandler.UpdateState)
	states.Delete("/:stateId", requireAdmin, stateHandler.DeleteState)

	// Universities
	universities := api.Group("/university")
	universities.Get("/", universityHandler.ListUniversities)
	universities.Post("/", requireAdmin, universityHandler.CreateUniversity)
	universities.Delete("/deletemany", requireAdmin, guardBulk, universityHandler.DeleteManyUniversities)
	universities.Get("/:stateId/state", universityHandler.ListUniversitiesByState)
	universities.Get("/:universityId", universityHandler.GetUniversity)
	universities.Patch("/:universityId", requireAdmin, universityHandler.UpdateUniversity)
	universities.Delete("/:universityId", requireAdmin, universityHandler.DeleteUniversity)

	// Colleges
	colleges := api.Group("/college")
	colleges.Get("/", collegeHandler.ListColleges)
	colleges.Post("/", requireAdmin, collegeHandler.CreateCollege)
	colleges.Delete("/deletemany", requireAdmin, guardBulk, collegeHandler.DeleteManyColleges)
	colleges.Get("/:universityId/university", collegeHandler.ListCollegesByUniversity)
	colleges.Get("/:collegeId", collegeHandler.GetCollege)
	colleges.Patch("/:collegeId", requireAdmin, collegeHandler.UpdateCollege)
	colleges.Delete("/:collegeId", requireAdmin, collegeHandler.DeleteCollege)

	// Buildings (create accepts a batch of names for one college)
	buildings := api.Group("/building")
	buildings.Get("/", buildingHandler.ListBuildings)
	buildings.Post("/", requireAdmin, buildingHandler.CreateBuildings)
	buildings.Delete("/deletemany", requireAdmin, guardBulk, buildingHandler.DeleteManyBuildings)
	buildings.Get("/:collegeId/college", buildingHandler.ListBuildingsByCollege)
	buildings.Get("/:buildingId", buildingHandler.GetBuilding)
	buildings.Patch("/:buildingId", requireAdmin, buildingHandler.UpdateBuilding)
	buildings.Delete("/:buildingId", requireAdmin, buildingHandler.DeleteBuilding)

	// Rooms (multipart create/update with an optional image)
	rooms := api.Group("/room")
	rooms.Get("/", roomHandler.ListRooms)
	rooms.Post("/", requireAdmin, roomHandler.CreateRoom)
	rooms.Delete("/deletemany", requireAdmin, guardBulk, roomHandler.DeleteManyRooms)
	rooms.Get("/:buildingId/building", roomHandler.ListRoomsByBuilding)
	rooms.Get("/:roomId", roomHandler.GetRoom)
	rooms.Patch("/:roomId", requireAdmin, roomHandler.UpdateRoom)
	rooms.Delete("/:roomId", requireAdmin, roomHandler.DeleteRoom)
}
