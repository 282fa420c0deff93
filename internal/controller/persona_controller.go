package controller

import (
	"contract-redline-be/internal/dto"
	"contract-redline-be/internal/pkg/serverutils"
	"contract-redline-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPersonaController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Upsert(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type personaController struct {
	service  service.IPersonaService
	jwtGuard fiber.Handler
}

func NewPersonaController(service service.IPersonaService, jwtGuard fiber.Handler) IPersonaController {
	return &personaController{service: service, jwtGuard: jwtGuard}
}

func (c *personaController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/personas/v1")
	h.Get("", c.GetAll)
	// Mutations are admin-only.
	h.Post("", c.jwtGuard, c.Upsert)
	h.Delete(":name", c.jwtGuard, c.Delete)
}

func (c *personaController) GetAll(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get all personas", c.service.GetAll()))
}

func (c *personaController) Upsert(ctx *fiber.Ctx) error {
	var req dto.UpsertPersonaRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.service.Upsert(&req)
	return ctx.JSON(serverutils.SuccessResponse("Success upsert persona", res))
}

func (c *personaController) Delete(ctx *fiber.Ctx) error {
	name := ctx.Params("name")
	if name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "persona name is required")
	}

	c.service.Delete(name)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete persona", nil))
}
