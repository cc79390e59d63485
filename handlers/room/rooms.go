package room

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/campusgrid/campus-api/crud"
	"github.com/campusgrid/campus-api/model"
	"github.com/campusgrid/campus-api/services/storage"
	"github.com/campusgrid/campus-api/utils/response"
	"github.com/campusgrid/campus-api/utils/validation"
)

// roomImagePrefix is the object-key prefix for stored room images.
const roomImagePrefix = "rooms"

var errStorageUnavailable = errors.New("object storage is not configured")

// RoomHandler handles room-related requests. Room create/update accept
// multipart form data so an image can ride along; the image lives in
// object storage and only its URL persists on the record.
type RoomHandler struct {
	db        *gorm.DB
	service   *crud.Service[model.Room]
	storage   storage.ObjectStorage
	validator *validation.Validator
}

// NewRoomHandler creates a new room handler. store may be nil when no
// object storage is configured; image uploads are then rejected.
func NewRoomHandler(db *gorm.DB, store storage.ObjectStorage) *RoomHandler {
	return &RoomHandler{
		db: db,
		service: crud.NewService[model.Room](db, crud.Config{
			Name:        "room",
			ParentAssoc: "Building",
			ParentTable: "buildings",
			Sortable:    []string{"name", "created_at"},
		}),
		storage:   store,
		validator: validation.NewValidator(),
	}
}

// CreateRoomRequest represents the form fields for creating a room
type CreateRoomRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	BuildingID  *uint  `json:"building_id" validate:"omitempty,gt=0"`
}

// UpdateRoomRequest represents the form fields for updating a room
type UpdateRoomRequest struct {
	Name        string `json:"name" validate:"omitempty,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	BuildingID  *uint  `json:"building_id" validate:"omitempty,gt=0"`
}

// DeleteManyRoomsRequest represents the request body for a bulk delete
type DeleteManyRoomsRequest struct {
	RoomIds []uint `json:"roomIds" validate:"required,min=1,dive,gt=0"`
}

// ListRooms handles GET /v1/room
func (h *RoomHandler) ListRooms(c *fiber.Ctx) error {
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
		return response.InternalServerError(c, "Failed to fetch rooms")
	}
	return response.Success(c, page)
}

// GetRoom handles GET /v1/room/:roomId
func (h *RoomHandler) GetRoom(c *fiber.Ctx) error {
	id, err := c.ParamsInt("roomId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid room id")
	}

	room, err := h.service.Get(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "Room not found")
		}
		return response.InternalServerError(c, "Failed to fetch room")
	}
	return response.Success(c, room)
}

// CreateRoom handles POST /v1/room (multipart/form-data)
func (h *RoomHandler) CreateRoom(c *fiber.Ctx) error {
	req := CreateRoomRequest{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
	}
	buildingID, err := parseFormID(c, "building_id")
	if err != nil {
		return response.BadRequest(c, "Invalid building id")
	}
	req.BuildingID = buildingID

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	room := model.Room{
		Name:        validation.SanitizeString(req.Name),
		Description: validation.SanitizeString(req.Description),
		BuildingID:  req.BuildingID,
	}

	if file, ferr := c.FormFile("image"); ferr == nil && file != nil {
		imageURL, upErr := h.storeImage(c.Context(), file)
		switch {
		case errors.Is(upErr, errStorageUnavailable):
			return response.ServiceUnavailable(c, "Image storage is not configured")
		case errors.Is(upErr, storage.ErrInvalidImage):
			return response.BadRequest(c, upErr.Error())
		case upErr != nil:
			return response.InternalServerError(c, "Failed to store image")
		}
		room.Image = imageURL
	}

	if err := h.service.Create(c.Context(), &room); err != nil {
		// The image is already in the bucket; do not leave it orphaned.
		h.discardImage(c.Context(), room.Image)
		if errors.Is(err, crud.ErrParentNotFound) {
			return response.BadRequest(c, "Building does not exist")
		}
		return response.InternalServerError(c, "Failed to create room")
	}
	return response.Created(c, room)
}

// UpdateRoom handles PATCH /v1/room/:roomId (multipart/form-data). A
// new image replaces the old one, which is removed from storage after
// the record is saved.
func (h *RoomHandler) UpdateRoom(c *fiber.Ctx) error {
	id, err := c.ParamsInt("roomId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid room id")
	}

	req := UpdateRoomRequest{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
	}
	buildingID, err := parseFormID(c, "building_id")
	if err != nil {
		return response.BadRequest(c, "Invalid building id")
	}
	req.BuildingID = buildingID

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var newImage string
	if file, ferr := c.FormFile("image"); ferr == nil && file != nil {
		imageURL, upErr := h.storeImage(c.Context(), file)
		switch {
		case errors.Is(upErr, errStorageUnavailable):
			return response.ServiceUnavailable(c, "Image storage is not configured")
		case errors.Is(upErr, storage.ErrInvalidImage):
			return response.BadRequest(c, upErr.Error())
		case upErr != nil:
			return response.InternalServerError(c, "Failed to store image")
		}
		newImage = imageURL
	}

	if req.Name == "" && req.Description == "" && req.BuildingID == nil && newImage == "" {
		return response.BadRequest(c, "At least one field is required")
	}

	var oldImage string
	room, err := h.service.Update(c.Context(), uint(id), func(room *model.Room) {
		if req.Name != "" {
			room.Name = validation.SanitizeString(req.Name)
		}
		if req.Description != "" {
			room.Description = validation.SanitizeString(req.Description)
		}
		if req.BuildingID != nil {
			room.BuildingID = req.BuildingID
		}
		if newImage != "" {
			oldImage = room.Image
			room.Image = newImage
		}
	})
	if err != nil {
		h.discardImage(c.Context(), newImage)
		switch {
		case errors.Is(err, crud.ErrNotFound):
			return response.NotFound(c, "Room not found")
		case errors.Is(err, crud.ErrParentNotFound):
			return response.BadRequest(c, "Building does not exist")
		}
		return response.InternalServerError(c, "Failed to update room")
	}

	h.discardImage(c.Context(), oldImage)
	return response.SuccessWithMessage(c, "Room updated successfully", room)
}

// DeleteRoom handles DELETE /v1/room/:roomId. The stored image is
// removed first; a storage failure aborts the delete so the record
// never outlives silently leaked objects.
func (h *RoomHandler) DeleteRoom(c *fiber.Ctx) error {
	id, err := c.ParamsInt("roomId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid room id")
	}

	if _, err := h.service.Delete(c.Context(), uint(id), h.imageCleanupHook(c.Context())); err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "Room not found")
		}
		return response.InternalServerError(c, "Failed to delete room")
	}
	return response.NoContent(c)
}

// DeleteManyRooms handles DELETE /v1/room/deletemany
func (h *RoomHandler) DeleteManyRooms(c *fiber.Ctx) error {
	var req DeleteManyRoomsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.service.DeleteMany(c.Context(), req.RoomIds, h.imageCleanupHook(c.Context()))
	if err != nil {
		return response.InternalServerError(c, "Failed to delete rooms")
	}
	if len(result.NotFound) > 0 {
		return response.NotFound(c, fmt.Sprintf("Some rooms not found: %s", crud.JoinIDs(result.NotFound)))
	}
	return response.NoContent(c)
}

// ListRoomsByBuilding handles GET /v1/room/:buildingId/building and
// returns the building annotated with its rooms.
func (h *RoomHandler) ListRoomsByBuilding(c *fiber.Ctx) error {
	id, err := c.ParamsInt("buildingId")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid building id")
	}

	building, rooms, err := crud.ChildrenOf[model.Building, model.Room](c.Context(), h.db, uint(id), "building_id")
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return response.NotFound(c, "Building not found")
		}
		return response.InternalServerError(c, "Failed to fetch rooms by building")
	}

	payload := struct {
		model.Building
		Rooms []model.Room `json:"rooms"`
	}{*building, rooms}
	return response.Success(c, payload)
}

// storeImage validates and uploads an image, returning its public URL.
func (h *RoomHandler) storeImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if h.storage == nil {
		return "", errStorageUnavailable
	}

	contentType, err := storage.ValidateImage(file)
	if err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded image: %w", err)
	}
	defer src.Close()

	key := storage.GenerateKey(roomImagePrefix, file.Filename)
	return h.storage.Upload(ctx, key, src, contentType)
}

// discardImage best-effort deletes an image that is no longer
// referenced (replaced, or uploaded for a write that failed).
func (h *RoomHandler) discardImage(ctx context.Context, imageURL string) {
	if h.storage == nil || imageURL == "" {
		return
	}
	key, err := storage.KeyFromURL(imageURL)
	if err != nil {
		log.Printf("room image cleanup: %v", err)
		return
	}
	if err := h.storage.Delete(ctx, key); err != nil {
		log.Printf("room image cleanup: failed to delete %s: %v", key, err)
	}
}

// imageCleanupHook removes the room's stored image before the record
// delete; its failure propagates and aborts the delete.
func (h *RoomHandler) imageCleanupHook(ctx context.Context) func(*model.Room) error {
	return func(room *model.Room) error {
		if room.Image == "" {
			return nil
		}
		if h.storage == nil {
			return errStorageUnavailable
		}
		key, err := storage.KeyFromURL(room.Image)
		if err != nil {
			return err
		}
		return h.storage.Delete(ctx, key)
	}
}

func parseFormID(c *fiber.Ctx, field string) (*uint, error) {
	v := c.FormValue(field)
	if v == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(v, 10, 32)
	if err != nil || parsed == 0 {
		return nil, fmt.Errorf("invalid %s: %q", field, v)
	}
	id := uint(parsed)
	return &id, nil
}
