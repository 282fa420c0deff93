package controller

import (
	"contract-redline-be/internal/dto"
	"contract-redline-be/internal/pkg/serverutils"
	"contract-redline-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IContractController interface {
	RegisterRoutes(r fiber.Router)
	Analyze(ctx *fiber.Ctx) error
	Match(ctx *fiber.Ctx) error
}

type contractController struct {
	service service.IContractService
}

func NewContractController(service service.IContractService) IContractController {
	return &contractController{service: service}
}

func (c *contractController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/contracts/v1")
	h.Post("/analyze", c.Analyze)
	h.Post("/match", c.Match)
}

func (c *contractController) Analyze(ctx *fiber.Ctx) error {
	var req dto.AnalyzeContractRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AnalyzeContract(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success analyze contract", res))
}

func (c *contractController) Match(ctx *fiber.Ctx) error {
	var req dto.MatchDocumentsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.MatchDocuments(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success match documents", res))
}
