package content

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-boards/auth"
	"github.com/google/uuid"
)

// PostPayload is the create and update request body
type PostPayload struct {
	Title    string `json:"title"`
	Contents string `json:"contents"`
}

// Validate will run validation rules
func (p PostPayload) Validate() error {
	return auth.NewValidationError(ErrInvalidInput, validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Contents, validation.Required),
	))
}

// StatusPayload is the status change request body
type StatusPayload struct {
	Status string `json:"status"`
}

// Validate will run validation rules
func (p StatusPayload) Validate() error {
	return auth.NewValidationError(ErrInvalidStatus, validation.ValidateStruct(&p,
		validation.Field(&p.Status, validation.Required, validation.By(func(value any) error {
			s, _ := value.(string)
			if _, err := ParseStatus(s); err != nil {
				return fmt.Errorf("%s isn't in the status options", s)
			}
			return nil
		})),
	))
}

// PostResponse is the public view of a post
type PostResponse struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	Contents  string    `json:"contents"`
	Status    Status    `json:"status"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchResponse is the reduced view returned by author search
type SearchResponse struct {
	Author   string `json:"author"`
	Title    string `json:"title"`
	Contents string `json:"contents"`
}

func ToResponse(p *Post) PostResponse {
	return PostResponse{
		ID:        p.ID.String(),
		Author:    p.Author,
		Title:     p.Title,
		Contents:  p.Contents,
		Status:    p.Status,
		UserID:    p.UserID.String(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func ToSearchResponse(p *Post) SearchResponse {
	return SearchResponse{
		Author:   p.Author,
		Title:    p.Title,
		Contents: p.Contents,
	}
}

type Controller[R Resource] struct {
	service *Service[R]
	logger  auth.Logger
}

func NewController[R Resource](service *Service[R], logger auth.Logger) *Controller[R] {
	return &Controller[R]{
		service: service,
		logger:  auth.ResolveLogger(service.Kind().Plural, nil, logger),
	}
}

// RegisterRoutes mounts the resource under /<plural>. protected must
// authenticate the request and attach the principal. It runs on each route
// rather than on the group, so paths that only share the prefix fall
// through to the not found handler.
func RegisterRoutes[R Resource](router fiber.Router, protected fiber.Handler, service *Service[R], logger auth.Logger) *Controller[R] {
	c := NewController(service, logger)
	plural := service.Kind().Plural

	g := router.Group("/" + plural)

	g.Post("/", protected, auth.RequireRoles(auth.RoleUser), c.Create).Name(plural + ".create")
	g.Get("/", protected, auth.RequireRoles(auth.RoleUser), c.List).Name(plural + ".list")
	g.Get("/my"+plural, protected, auth.RequireRoles(auth.RoleUser), c.ListMine).Name(plural + ".mine")
	g.Get("/search/:keyword?", protected, c.Search).Name(plural + ".search")
	g.Get("/:id", protected, c.Get).Name(plural + ".get")
	g.Put("/:id", protected, c.Update).Name(plural + ".update")
	g.Patch("/:id", protected, auth.RequireRoles(auth.RoleAdmin), c.UpdateStatus).Name(plural + ".status")
	g.Delete("/:id", protected, auth.RequireRoles(auth.RoleUser, auth.RoleAdmin), c.Delete).Name(plural + ".delete")

	return c
}

func (h *Controller[R]) Create(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromRouter(c)

	payload := new(PostPayload)
	if err := c.BodyParser(payload); err != nil {
		return auth.NewValidationError(ErrInvalidInput, err)
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	record, err := h.service.Create(c.UserContext(), principal, PostInput{
		Title:    payload.Title,
		Contents: payload.Contents,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(ToResponse(record.Base()))
}

func (h *Controller[R]) List(c *fiber.Ctx) error {
	records, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(responses(records, ToResponse))
}

func (h *Controller[R]) ListMine(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromRouter(c)

	records, err := h.service.ListMine(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(responses(records, ToResponse))
}

func (h *Controller[R]) Search(c *fiber.Ctx) error {
	records, err := h.service.Search(c.UserContext(), c.Query("author"))
	if err != nil {
		return err
	}
	return c.JSON(responses(records, ToSearchResponse))
}

func (h *Controller[R]) Get(c *fiber.Ctx) error {
	id, err := h.parseID(c)
	if err != nil {
		return err
	}

	record, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(ToResponse(record.Base()))
}

func (h *Controller[R]) Update(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromRouter(c)

	id, err := h.parseID(c)
	if err != nil {
		return err
	}

	payload := new(PostPayload)
	if err := c.BodyParser(payload); err != nil {
		return auth.NewValidationError(ErrInvalidInput, err)
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	record, err := h.service.Update(c.UserContext(), principal, id, PostInput{
		Title:    payload.Title,
		Contents: payload.Contents,
	})
	if err != nil {
		return err
	}
	return c.JSON(ToResponse(record.Base()))
}

func (h *Controller[R]) UpdateStatus(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromRouter(c)

	id, err := h.parseID(c)
	if err != nil {
		return err
	}

	payload := new(StatusPayload)
	if err := c.BodyParser(payload); err != nil {
		return auth.NewValidationError(ErrInvalidStatus, err)
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	status, err := ParseStatus(payload.Status)
	if err != nil {
		return err
	}

	record, err := h.service.UpdateStatus(c.UserContext(), principal, id, status)
	if err != nil {
		return err
	}
	return c.JSON(ToResponse(record.Base()))
}

func (h *Controller[R]) Delete(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromRouter(c)

	id, err := h.parseID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseID reads the :id param. Malformed ids cannot name a record and are
// reported as not found.
func (h *Controller[R]) parseID(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Params("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Debug("malformed id", "id", raw, "error", err)
		return uuid.Nil, h.service.notFound(raw)
	}
	return id, nil
}

func responses[R Resource, T any](records []R, view func(*Post) T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, view(r.Base()))
	}
	return out
}
