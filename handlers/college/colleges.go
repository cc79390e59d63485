package college

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

// CollegeHandler handles college-related requests
type CollegeHandler struct {
	db        *gorm.DB
	service   *crud.Service[model.College]
	validator *validation.Validator
}

// NewCollegeHandler creates a new college handler
func NewCollegeHandler(db *gorm.DB) *CollegeHandler {
	return &CollegeHandler{
		db: db,
		service: crud.NewService[model.College](db, crud.Config{
			Name:        "college",
			ParentAssoc: "University",
			ParentTable: "universities",
			Sortable:    []string{"name", "created_at"},
		}),
		validator: validation.NewValidator(),
	}
}

// CreateCollegeRequest represents the request body for creating a college
type CreateCollegeRequest struct {
	Name         string `json:"name" validate:"required,min=3,max=255"`
	UniversityID *uint  `json:"university_id" validate:"omitempty,gt=0"`
}

// UpdateCollegeRequest represents the request body for updating a college
type UpdateCollegeRequest struct {
	Name         string `json:"name" validate:"omitempty,min=3,max=255"`
	UniversityID *uint  `json:"university_id" validate:"omitempty,gt=0"`
}

// DeleteManyCollegesRequest represents the request body for a bulk delete
type DeleteManyCollegesRequest struct {
	CollegeIds []uint `json:"collegeIds" validate:"required,min=1,dive,gt=0"`
}

// ListColleges handles GET /v1/college
func (h *CollegeHandler) ListColleges(c *fiber.Ctx) error {
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
		return response.InternalServerError(c, "Failed to fetch colleges")
	}
	return response.Success(c, page)
}

// GetCollege handles GET /v1/college/:collegeId
func (h *CollegeHandler) GetCollege(c *fiber.Ctx) error {
	id, err := c.ParamsInt("collegeId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid college id")
	}

	college, err := h.service.Get(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "College not found")
		}
		return response.InternalServerError(c, "Failed to fetch college")
	}
	return response.Success(c, college)
}

// CreateCollege handles POST /v1/college
func (h *CollegeHandler) CreateCollege(c *fiber.Ctx) error {
	var req CreateCollegeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	college := model.College{
		Name:         validation.SanitizeString(req.Name),
		UniversityID: req.UniversityID,
	}
	if err := h.service.Create(c.Context(), &college); err != nil {
		switch {
		case errors.Is(err, crud.ErrDuplicate):
			return response.Duplicate(c, "College already exists!")
		case errors.Is(err, crud.ErrParentNotFound):
			return response.BadRequest(c, "University does not exist")
		}
		return response.InternalServerError(c, "Failed to create college")
	}
	return response.Created(c, college)
}

// UpdateCollege handles PATCH /v1/college/:collegeId
func (h *CollegeHandler) UpdateCollege(c *fiber.Ctx) error {
	id, err := c.ParamsInt("collegeId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid college id")
	}

	var req UpdateCollegeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if req.Name == "" && req.UniversityID == nil {
		return response.BadRequest(c, "At least one field is required")
	}

	college, err := h.service.Update(c.Context(), uint(id), func(college *model.College) {
		if req.Name != "" {
			college.Name = validation.SanitizeString(req.Name)
		}
		if req.UniversityID != nil {
			college.UniversityID = req.UniversityID
		}
	})
	if err != nil {
		switch {
		case errors.Is(err, crud.ErrNotFound):
			return response.NotFound(c, "College not found")
		case errors.Is(err, crud.ErrDuplicate):
			return response.Duplicate(c, "College already exists!")
		case errors.Is(err, crud.ErrParentNotFound):
			return response.BadRequest(c, "University does not exist")
		}
		return response.InternalServerError(c, "Failed to update college")
	}
	return response.SuccessWithMessage(c, "College updated successfully", college)
}

// DeleteCollege handles DELETE /v1/college/:collegeId
func (h *CollegeHandler) DeleteCollege(c *fiber.Ctx) error {
	id, err := c.ParamsInt("collegeId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid college id")
	}

	if _, err := h.service.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "College not found")
		}
		return response.InternalServerError(c, "Failed to delete college")
	}
	return response.NoContent(c)
}

// DeleteManyColleges handles DELETE /v1/college/deletemany
func (h *CollegeHandler) DeleteManyColleges(c *fiber.Ctx) error {
	var req DeleteManyCollegesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.service.DeleteMany(c.Context(), req.CollegeIds)
	if err != nil {
		return response.InternalServerError(c, "Failed to delete colleges")
	}
	if len(result.NotFound) > 0 {
		return response.NotFound(c, fmt.Sprintf("Some colleges not found: %s", crud.JoinIDs(result.NotFound)))
	}
	return response.NoContent(c)
}

// ListCollegesByUniversity handles GET /v1/college/:universityId/university
// and returns the university annotated with its colleges.
func (h *CollegeHandler) ListCollegesByUniversity(c *fiber.Ctx) error {
	id, err := c.ParamsInt("universityId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid university id")
	}

	university, colleges, err := crud.ChildrenOf[model.University, model.College](c.Context(), h.db, uint(id), "university_id")
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "University not found")
		}
		return response.InternalServerError(c, "Failed to fetch colleges by university")
	}

	payload := struct {
		model.University
		Colleges []model.College `json:"colleges"`
	}{*university, colleges}
	return response.Success(c, payload)
}
