package building

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campusgrid/campus-api/model"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open in-memory database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.College{}, &model.Building{}, &model.Room{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	handler := NewBuildingHandler(db)
	app := fiber.New()
	group := app.Group("/v1/building")
	group.Get("/", handler.ListBuildings)
	group.Post("/", handler.CreateBuildings)
	group.Delete("/deletemany", handler.DeleteManyBuildings)
	group.Get("/:collegeId/college", handler.ListBuildingsByCollege)
	group.Get("/:buildingId", handler.GetBuilding)
	group.Patch("/:buildingId", handler.UpdateBuilding)
	group.Delete("/:buildingId", handler.DeleteBuilding)
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return resp
}

func TestCreateBuildingsBatch(t *testing.T) {
	app, db := newTestApp(t)

	college := model.College{Name: "Engineering College"}
	if err := db.Create(&college).Error; err != nil {
		t.Fatalf("seed college: %v", err)
	}

	resp := doJSON(t, app, http.MethodPost, "/v1/building/", map[string]interface{}{
		"name":       []string{"Block A", "Block B", "Block C"},
		"college_id": college.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var body struct {
		Data []model.Building `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp.Body.Close()
	if len(body.Data) != 3 {
		t.Fatalf("created %d buildings, want 3", len(body.Data))
	}
	for _, b := range body.Data {
		if b.ID == 0 || b.CollegeID == nil || *b.CollegeID != college.ID {
			t.Errorf("building %+v not linked to college %d", b, college.ID)
		}
	}

	// Repeating a name is allowed for buildings.
	resp = doJSON(t, app, http.MethodPost, "/v1/building/", map[string]interface{}{
		"name":       []string{"Block A"},
		"college_id": college.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("duplicate name status = %d, want 201", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCreateBuildingsMissingCollege(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/v1/building/", map[string]interface{}{
		"name":       []string{"Block A"},
		"college_id": 777,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}
