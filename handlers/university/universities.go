package university

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

// UniversityHandler handles university-related requests
type UniversityHandler struct {
	db        *gorm.DB
	service   *crud.Service[model.University]
	validator *validation.Validator
}

// NewUniversityHandler creates a new university handler
func NewUniversityHandler(db *gorm.DB) *UniversityHandler {
	return &UniversityHandler{
		db: db,
		service: crud.NewService[model.University](db, crud.Config{
			Name:        "university",
			ParentAssoc: "State",
			ParentTable: "states",
			Sortable:    []string{"name", "created_at"},
		}),
		validator: validation.NewValidator(),
	}
}

// CreateUniversityRequest represents the request body for creating a university
type CreateUniversityRequest struct {
	Name    string `json:"name" validate:"required,min=3,max=255"`
	StateID *uint  `json:"state_id" validate:"omitempty,gt=0"`
}

// UpdateUniversityRequest represents the request body for updating a university
type UpdateUniversityRequest struct {
	Name    string `json:"name" validate:"omitempty,min=3,max=255"`
	StateID *uint  `json:"state_id" validate:"omitempty,gt=0"`
}

// DeleteManyUniversitiesRequest represents the request body for a bulk delete
type DeleteManyUniversitiesRequest struct {
	UniversityIds []uint `json:"universityIds" validate:"required,min=1,dive,gt=0"`
}

// ListUniversities handles GET /v1/university
func (h *UniversityHandler) ListUniversities(c *fiber.Ctx) error {
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
		return response.InternalServerError(c, "Failed to fetch universities")
	}
	return response.Success(c, page)
}

// GetUniversity handles GET /v1/university/:universityId
func (h *UniversityHandler) GetUniversity(c *fiber.Ctx) error {
	id, err := c.ParamsInt("universityId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid university id")
	}

	university, err := h.service.Get(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "University not found")
		}
		return response.InternalServerError(c, "Failed to fetch university")
	}
	return response.Success(c, university)
}

// CreateUniversity handles POST /v1/university
func (h *UniversityHandler) CreateUniversity(c *fiber.Ctx) error {
	var req CreateUniversityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	university := model.University{
		Name:    validation.SanitizeString(req.Name),
		StateID: req.StateID,
	}
	if err := h.service.Create(c.Context(), &university); err != nil {
		switch {
		case errors.Is(err, crud.ErrDuplicate):
			return response.Duplicate(c, "University already exists!")
		case errors.Is(err, crud.ErrParentNotFound):
			return response.BadRequest(c, "State does not exist")
		}
		return response.InternalServerError(c, "Failed to create university")
	}
	return response.Created(c, university)
}

// UpdateUniversity handles PATCH /v1/university/:universityId
func (h *UniversityHandler) UpdateUniversity(c *fiber.Ctx) error {
	id, err := c.ParamsInt("universityId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid university id")
	}

	var req UpdateUniversityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if req.Name == "" && req.StateID == nil {
		return response.BadRequest(c, "At least one field is required")
	}

	university, err := h.service.Update(c.Context(), uint(id), func(university *model.University) {
		if req.Name != "" {
			university.Name = validation.SanitizeString(req.Name)
		}
		if req.StateID != nil {
			university.StateID = req.StateID
		}
	})
	if err != nil {
		switch {
		case errors.Is(err, crud.ErrNotFound):
			return response.NotFound(c, "University not found")
		case errors.Is(err, crud.ErrDuplicate):
			return response.Duplicate(c, "University already exists!")
		case errors.Is(err, crud.ErrParentNotFound):
			return response.BadRequest(c, "State does not exist")
		}
		return response.InternalServerError(c, "Failed to update university")
	}
	return response.SuccessWithMessage(c, "University updated successfully", university)
}

// DeleteUniversity handles DELETE /v1/university/:universityId
func (h *UniversityHandler) DeleteUniversity(c *fiber.Ctx) error {
	id, err := c.ParamsInt("universityId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid university id")
	}

	if _, err := h.service.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "University not found")
		}
		return response.InternalServerError(c, "Failed to delete university")
	}
	return response.NoContent(c)
}

// DeleteManyUniversities handles DELETE /v1/university/deletemany
func (h *UniversityHandler) DeleteManyUniversities(c *fiber.Ctx) error {
	var req DeleteManyUniversitiesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.service.DeleteMany(c.Context(), req.UniversityIds)
	if err != nil {
		return response.InternalServerError(c, "Failed to delete universities")
	}
	if len(result.NotFound) > 0 {
		return response.NotFound(c, fmt.Sprintf("Some universities not found: %s", crud.JoinIDs(result.NotFound)))
	}
	return response.NoContent(c)
}

// ListUniversitiesByState handles GET /v1/university/:stateId/state and
// returns the state annotated with its universities.
func (h *UniversityHandler) ListUniversitiesByState(c *fiber.Ctx) error {
	id, err := c.ParamsInt("stateId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid state id")
	}

	state, universities, err := crud.ChildrenOf[model.State, model.University](c.Context(), h.db, uint(id), "state_id")
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "State not found")
		}
		return response.InternalServerError(c, "Failed to fetch universities by state")
	}

	payload := struct {
		model.State
		Universities []model.University `json:"universities"`
	}{*state, universities}
	return response.Success(c, payload)
}
