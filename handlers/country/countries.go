package country

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

// CountryHandler handles country-related requests
type CountryHandler struct {
	service   *crud.Service[model.Country]
	validator *validation.Validator
}

// NewCountryHandler creates a new country handler
func NewCountryHandler(db *gorm.DB) *CountryHandler {
	return &CountryHandler{
		service: crud.NewService[model.Country](db, crud.Config{
			Name:     "country",
			Sortable: []string{"name", "code", "created_at"},
		}),
		validator: validation.NewValidator(),
	}
}

// CreateCountryRequest represents the request body for creating a country
type CreateCountryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
	Code string `json:"code" validate:"required,min=2,max=10"`
}

// UpdateCountryRequest represents the request body for updating a country
type UpdateCountryRequest struct {
	Name string `json:"name" validate:"omitempty,min=2,max=255"`
	Code string `json:"code" validate:"omitempty,min=2,max=10"`
}

// DeleteManyCountriesRequest represents the request body for a bulk delete
type DeleteManyCountriesRequest struct {
	CountryIds []uint `json:"countryIds" validate:"required,min=1,dive,gt=0"`
}

// ListCountries handles GET /v1/country
func (h *CountryHandler) ListCountries(c *fiber.Ctx) error {
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
		return response.InternalServerError(c, "Failed to fetch countries")
	}
	return response.Success(c, page)
}

// GetCountry handles GET /v1/country/:countryId
func (h *CountryHandler) GetCountry(c *fiber.Ctx) error {
	id, err := c.ParamsInt("countryId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid country id")
	}

	country, err := h.service.Get(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "Country not found")
		}
		return response.InternalServerError(c, "Failed to fetch country")
	}
	return response.Success(c, country)
}

// CreateCountry handles POST /v1/country
func (h *CountryHandler) CreateCountry(c *fiber.Ctx) error {
	var req CreateCountryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	country := model.Country{
		Name: validation.SanitizeString(req.Name),
		Code: validation.SanitizeString(req.Code),
	}
	if err := h.service.Create(c.Context(), &country); err != nil {
		if errors.Is(err, crud.ErrDuplicate) {
			return response.Duplicate(c, "Country or Country code already exists!")
		}
		return response.InternalServerError(c, "Failed to create country")
	}
	return response.Created(c, country)
}

// UpdateCountry handles PATCH /v1/country/:countryId
func (h *CountryHandler) UpdateCountry(c *fiber.Ctx) error {
	id, err := c.ParamsInt("countryId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid country id")
	}

	var req UpdateCountryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if req.Name == "" && req.Code == "" {
		return response.BadRequest(c, "At least one field is required")
	}

	country, err := h.service.Update(c.Context(), uint(id), func(country *model.Country) {
		if req.Name != "" {
			country.Name = validation.SanitizeString(req.Name)
		}
		if req.Code != "" {
			country.Code = validation.SanitizeString(req.Code)
		}
	})
	if err != nil {
		switch {
		case errors.Is(err, crud.ErrNotFound):
			return response.NotFound(c, "Country not found")
		case errors.Is(err, crud.ErrDuplicate):
			return response.Duplicate(c, "Country or Country code already exists!")
		}
		return response.InternalServerError(c, "Failed to update country")
	}
	return response.SuccessWithMessage(c, "Country updated successfully", country)
}

// DeleteCountry handles DELETE /v1/country/:countryId
func (h *CountryHandler) DeleteCountry(c *fiber.Ctx) error {
	id, err := c.ParamsInt("countryId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid country id")
	}

	if _, err := h.service.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "Country not found!")
		}
		return response.InternalServerError(c, "Failed to delete country")
	}
	return response.NoContent(c)
}

// DeleteManyCountries handles DELETE /v1/country/deletemany
func (h *CountryHandler) DeleteManyCountries(c *fiber.Ctx) error {
	var req DeleteManyCountriesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.service.DeleteMany(c.Context(), req.CountryIds)
	if err != nil {
		return response.InternalServerError(c, "Failed to delete countries")
	}
	if len(result.NotFound) > 0 {
		return response.NotFound(c, fmt.Sprintf("Some countries not found: %s", crud.JoinIDs(result.NotFound)))
	}
	return response.NoContent(c)
}
