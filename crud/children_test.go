package crud

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/campusgrid/campus-api/model"
)

func TestChildrenOf(t *testing.T) {
	db := newTestDB(t)
	countries := countryService(db)
	states := stateService(db)

	country := mustCreateCountry(t, countries, "India", "IN")
	for _, s := range []struct{ name, code string }{
		{"Goa", "GA"},
		{"Kerala", "KL"},
	} {
		if err := states.Create(context.Background(), &model.State{
			Name: s.name, StateCode: s.code, CountryID: &country.ID,
		}); err != nil {
			t.Fatalf("create state %q: %v", s.name, err)
		}
	}

	parent, children, err := ChildrenOf[model.Country, model.State](context.Background(), db, country.ID, "country_id")
	if err != nil {
		t.Fatalf("children of country: %v", err)
	}
	if parent.Name != "India" {
		t.Errorf("parent = %q, want India", parent.Name)
	}
	if len(children) != 2 {
		t.Errorf("got %d children, want 2", len(children))
	}
}

func TestChildrenOfMissingParent(t *testing.T) {
	db := newTestDB(t)

	_, _, err := ChildrenOf[model.Country, model.State](context.Background(), db, 404, "country_id")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing parent = %v, want ErrNotFound", err)
	}
}

func TestChildrenOfEmptyEncodesAsArray(t *testing.T) {
	db := newTestDB(t)
	countries := countryService(db)
	country := mustCreateCountry(t, countries, "India", "IN")

	_, children, err := ChildrenOf[model.Country, model.State](context.Background(), db, country.ID, "country_id")
	if err != nil {
		t.Fatalf("children of country: %v", err)
	}
	if children == nil {
		t.Fatal("children slice is nil, want empty")
	}

	// Wrapped the way the handlers respond: the explicit field must
	// serialize as [] rather than disappear or turn null.
	payload := struct {
		model.Country
		States []model.State `json:"states"`
	}{*country, children}

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if !strings.Contains(string(raw), `"states":[]`) {
		t.Errorf("payload %s does not carry an empty states array", raw)
	}
}
