package controller

import (
	"flex-designer-be/internal/dto"
	"flex-designer-be/internal/pkg/serverutils"
	"flex-designer-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDesignController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Load(ctx *fiber.Ctx) error
	Duplicate(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Activity(ctx *fiber.Ctx) error
}

type designController struct {
	service  service.IDesignService
	activity service.IActivityService
}

func NewDesignController(service service.IDesignService, activity service.IActivityService) IDesignController {
	return &designController{service: service, activity: activity}
}

func (c *designController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/design/v1")
	h.Get("", c.GetAll)
	h.Post("", c.Save)
	h.Get("activity", c.Activity)
	h.Get(":id", c.Show)
	h.Put(":id", c.Rename)
	h.Delete(":id", c.Delete)
	h.Post(":id/load", c.Load)
	h.Post(":id/duplicate", c.Duplicate)
}

func (c *designController) GetAll(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get all design", c.service.ListDesigns(ctx.UserContext())))
}

func (c *designController) Save(ctx *fiber.Ctx) error {
	var req dto.SaveDesignRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.SaveDesign(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save design", res))
}

func (c *designController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.ShowDesign(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show design", res))
}

func (c *designController) Load(ctx *fiber.Ctx) error {
	res, err := c.service.LoadDesign(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success load design", res))
}

func (c *designController) Duplicate(ctx *fiber.Ctx) error {
	res, err := c.service.DuplicateDesign(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success duplicate design", res))
}

func (c *designController) Rename(ctx *fiber.Ctx) error {
	var req dto.RenameDesignRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.RenameDesign(ctx.UserContext(), ctx.Params("id"), req.Name)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success rename design", res))
}

func (c *designController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.DeleteDesign(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete design", nil))
}

func (c *designController) Activity(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 20)
	return ctx.JSON(serverutils.SuccessResponse("Success get activity", c.activity.Recent(limit)))
}
