package building

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

// BuildingHandler handles building-related requests
type BuildingHandler struct {
	db        *gorm.DB
	service   *crud.Service[model.Building]
	validator *validation.Validator
}

// NewBuildingHandler creates a new building handler
func NewBuildingHandler(db *gorm.DB) *BuildingHandler {
	return &BuildingHandler{
		db: db,
		service: crud.NewService[model.Building](db, crud.Config{
			Name:        "building",
			ParentAssoc: "College",
			ParentTable: "colleges",
			Sortable:    []string{"name", "created_at"},
		}),
		validator: validation.NewValidator(),
	}
}

// CreateBuildingsRequest creates several sibling buildings sharing one
// college in a single call.
type CreateBuildingsRequest struct {
	Name      []string `json:"name" validate:"required,min=1,dive,required,min=1,max=255"`
	CollegeID *uint    `json:"college_id" validate:"required,gt=0"`
}

// UpdateBuildingRequest represents the request body for updating a building
type UpdateBuildingRequest struct {
	Name      string `json:"name" validate:"omitempty,min=1,max=255"`
	CollegeID *uint  `json:"college_id" validate:"omitempty,gt=0"`
}

// DeleteManyBuildingsRequest represents the request body for a bulk delete
type DeleteManyBuildingsRequest struct {
	BuildingIds []uint `json:"buildingIds" validate:"required,min=1,dive,gt=0"`
}

// ListBuildings handles GET /v1/building
func (h *BuildingHandler) ListBuildings(c *fiber.Ctx) error {
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
		return response.InternalServerError(c, "Failed to fetch buildings")
	}
	return response.Success(c, page)
}

// GetBuilding handles GET /v1/building/:buildingId
func (h *BuildingHandler) GetBuilding(c *fiber.Ctx) error {
	id, err := c.ParamsInt("buildingId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid building id")
	}

	building, err := h.service.Get(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "Building not found")
		}
		return response.InternalServerError(c, "Failed to fetch building")
	}
	return response.Success(c, building)
}

// CreateBuildings handles POST /v1/building. Unlike the other entity
// kinds it takes an array of names and creates one sibling per name,
// returning all of them.
func (h *BuildingHandler) CreateBuildings(c *fiber.Ctx) error {
	var req CreateBuildingsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	buildings := make([]model.Building, 0, len(req.Name))
	for _, name := range req.Name {
		buildings = append(buildings, model.Building{
			Name:      validation.SanitizeString(name),
			CollegeID: req.CollegeID,
		})
	}

	if err := h.service.CreateMany(c.Context(), buildings); err != nil {
		if errors.Is(err, crud.ErrParentNotFound) {
			return response.BadRequest(c, "College does not exist")
		}
		return response.InternalServerError(c, "Failed to create buildings")
	}
	return response.Created(c, buildings)
}

// UpdateBuilding handles PATCH /v1/building/:buildingId
func (h *BuildingHandler) UpdateBuilding(c *fiber.Ctx) error {
	id, err := c.ParamsInt("buildingId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid building id")
	}

	var req UpdateBuildingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if req.Name == "" && req.CollegeID == nil {
		return response.BadRequest(c, "At least one field is required")
	}

	building, err := h.service.Update(c.Context(), uint(id), func(building *model.Building) {
		if req.Name != "" {
			building.Name = validation.SanitizeString(req.Name)
		}
		if req.CollegeID != nil {
			building.CollegeID = req.CollegeID
		}
	})
	if err != nil {
		switch {
		case errors.Is(err, crud.ErrNotFound):
			return response.NotFound(c, "Building not found")
		case errors.Is(err, crud.ErrParentNotFound):
			return response.BadRequest(c, "College does not exist")
		}
		return response.InternalServerError(c, "Failed to update building")
	}
	return response.SuccessWithMessage(c, "Building updated successfully", building)
}

// DeleteBuilding handles DELETE /v1/building/:buildingId
func (h *BuildingHandler) DeleteBuilding(c *fiber.Ctx) error {
	id, err := c.ParamsInt("buildingId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid building id")
	}

	if _, err := h.service.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "Building not found")
		}
		return response.InternalServerError(c, "Failed to delete building")
	}
	return response.NoContent(c)
}

// DeleteManyBuildings handles DELETE /v1/building/deletemany
func (h *BuildingHandler) DeleteManyBuildings(c *fiber.Ctx) error {
	var req DeleteManyBuildingsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.service.DeleteMany(c.Context(), req.BuildingIds)
	if err != nil {
		return response.InternalServerError(c, "Failed to delete buildings")
	}
	if len(result.NotFound) > 0 {
		return response.NotFound(c, fmt.Sprintf("Some buildings not found: %s", crud.JoinIDs(result.NotFound)))
	}
	return response.NoContent(c)
}

// ListBuildingsByCollege handles GET /v1/building/:collegeId/college and
// returns the college annotated with its buildings.
func (h *BuildingHandler) ListBuildingsByCollege(c *fiber.Ctx) error {
	id, err := c.ParamsInt("collegeId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid college id")
	}

	college, buildings, err := crud.ChildrenOf[model.College, model.Building](c.Context(), h.db, uint(id), "college_id")
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "College not found")
		}
		return response.InternalServerError(c, "Failed to fetch buildings by college")
	}

	payload := struct {
		model.College
		Buildings []model.Building `json:"buildings"`
	}{*college, buildings}
	return response.Success(c, payload)
}
