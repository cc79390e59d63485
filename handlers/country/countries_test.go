package country

import (
	"bytes"
	"encoding/json"
	"fmt"
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

func newTestApp(t *testing.T) *fiber.App {
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

	if err := db.AutoMigrate(&model.Country{}, &model.State{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	handler := NewCountryHandler(db)
	app := fiber.New()
	group := app.Group("/v1/country")
	group.Get("/", handler.ListCountries)
	group.Post("/", handler.CreateCountry)
	group.Delete("/deletemany", handler.DeleteManyCountries)
	group.Get("/:countryId", handler.GetCountry)
	group.Patch("/:countryId", handler.UpdateCountry)
	group.Delete("/:countryId", handler.DeleteCountry)
	return app
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

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}

func TestCreateCountry(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/v1/country/", map[string]string{
		"name": "India", "code": "IN",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("data missing from body %v", body)
	}
	if data["name"] != "India" || data["code"] != "IN" {
		t.Errorf("created %v/%v, want India/IN", data["name"], data["code"])
	}
}

func TestCreateCountryDuplicate(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/v1/country/", map[string]string{"name": "India", "code": "IN"})
	resp.Body.Close()

	// Same code under a different name still collides.
	resp = doJSON(t, app, http.MethodPost, "/v1/country/", map[string]string{"name": "Bharat", "code": "IN"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	errDetail, ok := body["error"].(map[string]interface{})
	if !ok || errDetail["code"] != "DUPLICATE" {
		t.Errorf("error = %v, want code DUPLICATE", body["error"])
	}
}

func TestCreateCountryValidation(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/v1/country/", map[string]string{"name": "India"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("missing code status = %d, want 422", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestGetCountryNotFound(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/v1/country/999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestListCountriesByName(t *testing.T) {
	app := newTestApp(t)

	for _, c := range []map[string]string{
		{"name": "India", "code": "IN"},
		{"name": "Indonesia", "code": "ID"},
	} {
		resp := doJSON(t, app, http.MethodPost, "/v1/country/", c)
		resp.Body.Close()
	}

	resp := doJSON(t, app, http.MethodGet, "/v1/country/?name=India", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	results := data["results"].([]interface{})
	if len(results) != 1 {
		t.Fatalf("name filter returned %d results, want 1", len(results))
	}
	if data["totalResults"].(float64) != 1 {
		t.Errorf("totalResults = %v, want 1", data["totalResults"])
	}
}

func TestListCountriesPagination(t *testing.T) {
	app := newTestApp(t)

	for i := 0; i < 12; i++ {
		resp := doJSON(t, app, http.MethodPost, "/v1/country/", map[string]string{
			"name": fmt.Sprintf("Country %02d", i),
			"code": fmt.Sprintf("C%02d", i),
		})
		resp.Body.Close()
	}

	resp := doJSON(t, app, http.MethodGet, "/v1/country/?sortBy=name:asc&limit=5&page=3", nil)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	if data["totalPages"].(float64) != 3 || data["totalResults"].(float64) != 12 {
		t.Errorf("totals = %v pages / %v results, want 3 / 12", data["totalPages"], data["totalResults"])
	}
	if got := len(data["results"].([]interface{})); got != 2 {
		t.Errorf("page 3 has %d results, want 2", got)
	}
}

func TestUpdateCountry(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/v1/country/", map[string]string{"name": "India", "code": "IN"})
	created := decodeBody(t, resp)
	id := created["data"].(map[string]interface{})["id"].(float64)

	// Re-sending the current name is not a duplicate of itself.
	resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/v1/country/%.0f", id), map[string]string{
		"name": "India", "code": "IND",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["data"].(map[string]interface{})["code"] != "IND" {
		t.Errorf("code after update = %v, want IND", body["data"].(map[string]interface{})["code"])
	}

	// An empty patch is rejected.
	resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/v1/country/%.0f", id), map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty patch status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDeleteCountry(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/v1/country/", map[string]string{"name": "India", "code": "IN"})
	created := decodeBody(t, resp)
	id := created["data"].(map[string]interface{})["id"].(float64)

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/v1/country/%.0f", id), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/v1/country/%.0f", id), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDeleteManyCountries(t *testing.T) {
	app := newTestApp(t)

	var ids []uint
	for _, c := range []map[string]string{
		{"name": "India", "code": "IN"},
		{"name": "Nepal", "code": "NP"},
	} {
		resp := doJSON(t, app, http.MethodPost, "/v1/country/", c)
		created := decodeBody(t, resp)
		ids = append(ids, uint(created["data"].(map[string]interface{})["id"].(float64)))
	}

	resp := doJSON(t, app, http.MethodDelete, "/v1/country/deletemany", map[string][]uint{
		"countryIds": {ids[0], ids[1], 9999},
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("partial bulk delete status = %d, want 404", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	errDetail := body["error"].(map[string]interface{})
	if errDetail["message"] != "Some countries not found: 9999" {
		t.Errorf("message = %q, want the missing id listed", errDetail["message"])
	}

	// The existing records were still removed.
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/v1/country/%d", ids[0]), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("record %d survived the bulk delete", ids[0])
	}
	resp.Body.Close()
}
