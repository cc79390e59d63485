package room

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campusgrid/campus-api/model"
)

// fakeStorage records uploads and deletes in memory.
type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleteErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = raw
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func newTestApp(t *testing.T, store *fakeStorage) (*fiber.App, *gorm.DB) {
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

	if err := db.AutoMigrate(&model.Building{}, &model.Room{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var handler *RoomHandler
	if store != nil {
		handler = NewRoomHandler(db, store)
	} else {
		handler = NewRoomHandler(db, nil)
	}

	app := fiber.New()
	group := app.Group("/v1/room")
	group.Get("/", handler.ListRooms)
	group.Post("/", handler.CreateRoom)
	group.Delete("/deletemany", handler.DeleteManyRooms)
	group.Get("/:buildingId/building", handler.ListRoomsByBuilding)
	group.Get("/:roomId", handler.GetRoom)
	group.Patch("/:roomId", handler.UpdateRoom)
	group.Delete("/:roomId", handler.DeleteRoom)
	return app, db
}

func multipartBody(t *testing.T, fields map[string]string, imageName string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if imageName != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, imageName))
		header.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create image part: %v", err)
		}
		if _, err := part.Write([]byte("not a real png")); err != nil {
			t.Fatalf("write image part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func postRoom(t *testing.T, app *fiber.App, fields map[string]string, imageName string) *http.Response {
	t.Helper()
	body, contentType := multipartBody(t, fields, imageName)
	req := httptest.NewRequest(http.MethodPost, "/v1/room/", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("post room: %v", err)
	}
	return resp
}

func mustCreateBuilding(t *testing.T, db *gorm.DB) *model.Building {
	t.Helper()
	b := model.Building{Name: "Main Block"}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("create building: %v", err)
	}
	return &b
}

func TestCreateRoomWithImage(t *testing.T) {
	store := newFakeStorage()
	app, db := newTestApp(t, store)
	building := mustCreateBuilding(t, db)

	resp := postRoom(t, app, map[string]string{
		"name":        "Lecture Hall 1",
		"description": "Ground floor",
		"building_id": fmt.Sprintf("%d", building.ID),
	}, "hall.png")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var body struct {
		Data model.Room `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp.Body.Close()

	if body.Data.Image == "" {
		t.Error("created room has no image URL")
	}
	if store.count() != 1 {
		t.Errorf("storage holds %d objects, want 1", store.count())
	}
}

func TestCreateRoomRejectsBadImage(t *testing.T) {
	store := newFakeStorage()
	app, db := newTestApp(t, store)
	building := mustCreateBuilding(t, db)

	resp := postRoom(t, app, map[string]string{
		"name":        "Lab",
		"building_id": fmt.Sprintf("%d", building.ID),
	}, "notes.pdf")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
	if store.count() != 0 {
		t.Errorf("rejected upload still stored %d objects", store.count())
	}
}

func TestCreateRoomWithoutStorage(t *testing.T) {
	app, db := newTestApp(t, nil)
	building := mustCreateBuilding(t, db)

	// No storage configured: an image upload is refused...
	resp := postRoom(t, app, map[string]string{
		"name":        "Lab",
		"building_id": fmt.Sprintf("%d", building.ID),
	}, "lab.png")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	resp.Body.Close()

	// ...but an imageless room is fine.
	resp = postRoom(t, app, map[string]string{
		"name":        "Lab",
		"building_id": fmt.Sprintf("%d", building.ID),
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("imageless status = %d, want 201", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCreateRoomMissingBuilding(t *testing.T) {
	store := newFakeStorage()
	app, _ := newTestApp(t, store)

	resp := postRoom(t, app, map[string]string{
		"name":        "Lab",
		"building_id": "999",
	}, "lab.png")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	// The upload that rode along with the failed create was cleaned up.
	if store.count() != 0 {
		t.Errorf("storage holds %d objects after failed create, want 0", store.count())
	}
}

func TestDeleteRoomRemovesImage(t *testing.T) {
	store := newFakeStorage()
	app, db := newTestApp(t, store)
	building := mustCreateBuilding(t, db)

	resp := postRoom(t, app, map[string]string{
		"name":        "Lecture Hall",
		"building_id": fmt.Sprintf("%d", building.ID),
	}, "hall.png")
	var body struct {
		Data model.Room `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp.Body.Close()

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/v1/room/%d", body.Data.ID), nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("delete room: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()
	if store.count() != 0 {
		t.Errorf("storage holds %d objects after delete, want 0", store.count())
	}
}

func TestDeleteRoomAbortsWhenImageCleanupFails(t *testing.T) {
	store := newFakeStorage()
	app, db := newTestApp(t, store)
	building := mustCreateBuilding(t, db)

	resp := postRoom(t, app, map[string]string{
		"name":        "Lecture Hall",
		"building_id": fmt.Sprintf("%d", building.ID),
	}, "hall.png")
	var body struct {
		Data model.Room `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp.Body.Close()

	store.deleteErr = errors.New("bucket gone")
	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/v1/room/%d", body.Data.ID), nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("delete room: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("delete status = %d, want 500", resp.StatusCode)
	}
	resp.Body.Close()

	// The record survives a failed cleanup.
	var room model.Room
	if err := db.First(&room, body.Data.ID).Error; err != nil {
		t.Fatalf("room gone after aborted delete: %v", err)
	}
}

func TestListRoomsByBuildingEmpty(t *testing.T) {
	app, db := newTestApp(t, newFakeStorage())
	building := mustCreateBuilding(t, db)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/room/%d/building", building.ID), nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("list rooms by building: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.Contains(raw, []byte(`"rooms":[]`)) {
		t.Errorf("body %s does not carry an empty rooms array", raw)
	}
}
