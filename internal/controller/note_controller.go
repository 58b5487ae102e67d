package controller

import (
	"strconv"

	"marknotes-be/internal/dto"
	"marknotes-be/internal/pkg/serverutils"
	"marknotes-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Archive(ctx *fiber.Ctx) error
	Unarchive(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	DeleteArchived(ctx *fiber.Ctx) error
	ExportPDF(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService service.INoteService
}

func NewNoteController(noteService service.INoteService) INoteController {
	return &noteController{
		noteService: noteService,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/notes/v1")
	h.Use(auth)
	h.Get("", c.List)
	h.Post("", c.Create)
	// The literal archive route must be registered before the ":id" routes.
	h.Delete("archive", c.DeleteArchived)
	h.Get(":id", c.Show)
	h.Patch(":id", c.Update)
	h.Post(":id/archive", c.Archive)
	h.Post(":id/unarchive", c.Unarchive)
	h.Delete(":id", c.Delete)
	h.Get(":id/pdf", c.ExportPDF)
}

// ownerID reads the trusted user id placed by the JWT middleware. Owner
// identity is never taken from request parameters.
func ownerID(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "invalid session")
	}
	return userId, nil
}

func noteID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}
	return id, nil
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	userId, err := ownerID(ctx)
	if err != nil {
		return err
	}

	page := 1
	if raw := ctx.Query("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid page")
		}
	}

	res, err := c.noteService.List(ctx.Context(), userId, ctx.Query("age"), ctx.Query("search"), page)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	userId, err := ownerID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create note", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	userId, err := ownerID(ctx)
	if err != nil {
		return err
	}
	id, err := noteID(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Note not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	userId, err := ownerID(ctx)
	if err != nil {
		return err
	}
	id, err := noteID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Update(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Note not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update note", res))
}

func (c *noteController) Archive(ctx *fiber.Ctx) error {
	return c.setArchived(ctx, true)
}

func (c *noteController) Unarchive(ctx *fiber.Ctx) error {
	return c.setArchived(ctx, false)
}

func (c *noteController) setArchived(ctx *fiber.Ctx, archived bool) error {
	userId, err := ownerID(ctx)
	if err != nil {
		return err
	}
	id, err := noteID(ctx)
	if err != nil {
		return err
	}

	found, err := c.noteService.SetArchived(ctx.Context(), userId, id, archived)
	if err != nil {
		return err
	}
	if !found {
		return fiber.NewError(fiber.StatusNotFound, "Note not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("OK", nil))
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	userId, err := ownerID(ctx)
	if err != nil {
		return err
	}
	id, err := noteID(ctx)
	if err != nil {
		return err
	}

	found, err := c.noteService.Delete(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	if !found {
		return fiber.NewError(fiber.StatusNotFound, "Note not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("OK", nil))
}

func (c *noteController) DeleteArchived(ctx *fiber.Ctx) error {
	userId, err := ownerID(ctx)
	if err != nil {
		return err
	}

	count, err := c.noteService.DeleteArchived(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("OK", dto.DeleteArchivedResponse{Deleted: count}))
}

func (c *noteController) ExportPDF(ctx *fiber.Ctx) error {
	userId, err := ownerID(ctx)
	if err != nil {
		return err
	}
	id, err := noteID(ctx)
	if err != nil {
		return err
	}

	doc, err := c.noteService.ExportPDF(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fiber.NewError(fiber.StatusNotFound, "Note not found")
	}

	ctx.Set(fiber.HeaderContentType, "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename=`+doc.FileName)
	ctx.Set(fiber.HeaderContentLength, strconv.Itoa(len(doc.Data)))
	return ctx.Send(doc.Data)
}
