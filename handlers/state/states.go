package state

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/campusgrid/campus-api/crud"
	"github.com/campusgrid/campus-api/model"
	"github.com/campusgrid/campus-api/utils/response"
	"github.com/campusgrid/campus-api/utils/validation"
)

// StateHandler handles state-related requests
type StateHandler struct {
	db        *gorm.DB
	service   *crud.Service[model.State]
	validator *validation.Validator
}

// NewStateHandler creates a new state handler
func NewStateHandler(db *gorm.DB) *StateHandler {
	return &StateHandler{
		db: db,
		service: crud.NewService[model.State](db, crud.Config{
			Name:        "state",
			ParentAssoc: "Country",
			ParentTable: "countries",
			Sortable:    []string{"name", "state_code", "created_at"},
		}),
		validator: validation.NewValidator(),
	}
}

// CreateStateRequest represents the request body for creating a state
type CreateStateRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=255"`
	StateCode string `json:"state_code" validate:"required,min=1,max=10"`
	CountryID *uint  `json:"country_id" validate:"omitempty,gt=0"`
}

// UpdateStateRequest represents the request body for updating a state
type UpdateStateRequest struct {
	Name      string `json:"name" validate:"omitempty,min=2,max=255"`
	StateCode string `json:"state_code" validate:"omitempty,min=1,max=10"`
	CountryID *uint  `json:"country_id" validate:"omitempty,gt=0"`
}

// DeleteManyStatesRequest represents the request body for a bulk delete
type DeleteManyStatesRequest struct {
	StateIds []uint `json:"stateIds" validate:"required,min=1,dive,gt=0"`
}

// ListStates handles GET /v1/state
func (h *StateHandler) ListStates(c *fiber.Ctx) error {
	page, err := h.service.Query(c.Context(),
		crud.Filter{Name: c.Query("name")},
		crud.PageOptions{
			SortBy: c.Query("sortBy"),
			Limit:  c.QueryInt("limit"),
			Page:   c.QueryInt("page"),
		})
	if err != nil {
		if errors.Is(err, crud.ErrInvalidSort) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to fetch states")
	}
	return response.Success(c, page)
}

// GetState handles GET /v1/state/:stateId
func (h *StateHandler) GetState(c *fiber.Ctx) error {
	id, err := c.ParamsInt("stateId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid state id")
	}

	state, err := h.service.Get(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "State not found")
		}
		return response.InternalServerError(c, "Failed to fetch state")
	}
	return response.Success(c, state)
}

// CreateState handles POST /v1/state
func (h *StateHandler) CreateState(c *fiber.Ctx) error {
	var req CreateStateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	state := model.State{
		Name:      validation.SanitizeString(req.Name),
		StateCode: validation.SanitizeString(req.StateCode),
		CountryID: req.CountryID,
	}
	if err := h.service.Create(c.Context(), &state); err != nil {
		switch {
		case errors.Is(err, crud.ErrDuplicate):
			return response.Duplicate(c, "State or State code already exists!")
		case errors.Is(err, crud.ErrParentNotFound):
			return response.BadRequest(c, "Country does not exist")
		}
		return response.InternalServerError(c, "Failed to create state")
	}
	return response.Created(c, state)
}

// UpdateState handles PATCH /v1/state/:stateId
func (h *StateHandler) UpdateState(c *fiber.Ctx) error {
	id, err := c.ParamsInt("stateId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid state id")
	}

	var req UpdateStateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if req.Name == "" && req.StateCode == "" && req.CountryID == nil {
		return response.BadRequest(c, "At least one field is required")
	}

	state, err := h.service.Update(c.Context(), uint(id), func(state *model.State) {
		if req.Name != "" {
			state.Name = validation.SanitizeString(req.Name)
		}
		if req.StateCode != "" {
			state.StateCode = validation.SanitizeString(req.StateCode)
		}
		if req.CountryID != nil {
			state.CountryID = req.CountryID
		}
	})
	if err != nil {
		switch {
		case errors.Is(err, crud.ErrNotFound):
			return response.NotFound(c, "State not found")
		case errors.Is(err, crud.ErrDuplicate):
			return response.Duplicate(c, "State or State code already exists!")
		case errors.Is(err, crud.ErrParentNotFound):
			return response.BadRequest(c, "Country does not exist")
		}
		return response.InternalServerError(c, "Failed to update state")
	}
	return response.SuccessWithMessage(c, "State updated successfully", state)
}

// DeleteState handles DELETE /v1/state/:stateId
func (h *StateHandler) DeleteState(c *fiber.Ctx) error {
	id, err := c.ParamsInt("stateId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid state id")
	}

	if _, err := h.service.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "State not found")
		}
		return response.InternalServerError(c, "Failed to delete state")
	}
	return response.NoContent(c)
}

// DeleteManyStates handles DELETE /v1/state/deletemany
func (h *StateHandler) DeleteManyStates(c *fiber.Ctx) error {
	var req DeleteManyStatesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.service.DeleteMany(c.Context(), req.StateIds)
	if err != nil {
		return response.InternalServerError(c, "Failed to delete states")
	}
	if len(result.NotFound) > 0 {
		return response.NotFound(c, fmt.Sprintf("Some states not found: %s", crud.JoinIDs(result.NotFound)))
	}
	return response.NoContent(c)
}

// ListStatesByCountry handles GET /v1/state/:countryId/country and
// returns the country annotated with its states.
func (h *StateHandler) ListStatesByCountry(c *fiber.Ctx) error {
	id, err := c.ParamsInt("countryId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid country id")
	}

	country, states, err := crud.ChildrenOf[model.Country, model.State](c.Context(), h.db, uint(id), "country_id")
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "Country not found")
		}
		return response.InternalServerError(c, "Failed to fetch states by country")
	}

	payload := struct {
		model.Country
		States []model.State `json:"states"`
	}{*country, states}
	return response.Success(c, payload)
}
