package controller

import (
	"github.com/gofiber/fiber/v2"

	"ai-bizops-be/internal/pkg/serverutils"
	"ai-bizops-be/internal/service"
)

type IAgentController interface {
	RegisterRoutes(r fiber.Router)
	ListAgents(ctx *fiber.Ctx) error
	ListJobs(ctx *fiber.Ctx) error
	ActionCatalog(ctx *fiber.Ctx) error
}

type agentController struct {
	agentService service.IAgentService
}

func NewAgentController(agentService service.IAgentService) IAgentController {
	return &agentController{
		agentService: agentService,
	}
}

func (c *agentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/agent/v1")
	h.Get("", c.ListAgents)
	h.Get("jobs", c.ListJobs)
	h.Get("actions", c.ActionCatalog)
}

func (c *agentController) ListAgents(ctx *fiber.Ctx) error {
	res, err := c.agentService.ListAgents(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Pipeline agents", res))
}

func (c *agentController) ListJobs(ctx *fiber.Ctx) error {
	res, err := c.agentService.ListJobs(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Scheduled jobs", res))
}

func (c *agentController) ActionCatalog(ctx *fiber.Ctx) error {
	res, err := c.agentService.ActionCatalog(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Available actions", res))
}
