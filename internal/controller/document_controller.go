package controller

import (
	"encoding/json"

	"flex-designer-be/internal/dto"
	"flex-designer-be/internal/pkg/logger"
	"flex-designer-be/internal/pkg/serverutils"
	"flex-designer-be/internal/service"
	internalWS "flex-designer-be/internal/websocket"
	"flex-designer-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Current(ctx *fiber.Ctx) error
	New(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
	AddNode(ctx *fiber.Ctx) error
	UpdateNode(ctx *fiber.Ctx) error
	DeleteNode(ctx *fiber.Ctx) error
	Import(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Wire(ctx *fiber.Ctx) error
	Components(ctx *fiber.Ctx) error
	Templates(ctx *fiber.Ctx) error
	Preview(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDesignService
	catalog service.ICatalogService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

// NewDocumentController wires the editor endpoints. hub may be nil, in which
// case the preview socket answers 503.
func NewDocumentController(service service.IDesignService, catalog service.ICatalogService, hub *internalWS.Hub, log logger.ILogger) IDocumentController {
	return &documentController{
		service: service,
		catalog: catalog,
		hub:     hub,
		logger:  log,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Get("", c.Current)
	h.Post("new", c.New)
	h.Put("selection", c.Select)
	h.Post("nodes", c.AddNode)
	h.Patch("nodes/:id", c.UpdateNode)
	h.Delete("nodes/:id", c.DeleteNode)
	h.Post("import", c.Import)
	h.Get("export", c.Export)
	h.Get("wire", c.Wire)
	h.Get("components", c.Components)
	h.Get("templates", c.Templates)
	h.Get("preview", c.Preview)
}

func (c *documentController) Current(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get document", c.service.Current()))
}

func (c *documentController) New(ctx *fiber.Ctx) error {
	var req dto.NewDocumentRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.NewDocument(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create document", res))
}

func (c *documentController) Select(ctx *fiber.Ctx) error {
	var req dto.SelectNodeRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Select(ctx.UserContext(), req.NodeId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success select node", res))
}

func (c *documentController) AddNode(ctx *fiber.Ctx) error {
	var req dto.AddNodeRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.AddNode(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success add node", res))
}

func (c *documentController) UpdateNode(ctx *fiber.Ctx) error {
	var req dto.UpdateNodeRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdateNode(ctx.UserContext(), ctx.Params("id"), req.Props)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update node", res))
}

func (c *documentController) DeleteNode(ctx *fiber.Ctx) error {
	res, err := c.service.DeleteNode(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete node", res))
}

func (c *documentController) Import(ctx *fiber.Ctx) error {
	var req dto.ImportDocumentRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ImportWire(ctx.UserContext(), req.FlexMessage)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success import document", res))
}

func (c *documentController) Export(ctx *fiber.Ctx) error {
	res, err := c.service.Export(ctx.Query("alt_text"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success export document", res))
}

// Wire answers the bare wire tree, the form pasted into the messaging API
// simulator.
func (c *documentController) Wire(ctx *fiber.Ctx) error {
	data, err := c.service.WireJSON()
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Send(data)
}

func (c *documentController) Components(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get components", c.catalog.Components()))
}

func (c *documentController) Templates(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get templates", c.catalog.Templates()))
}

// Preview upgrades to a websocket that receives the current document and
// then every change to it.
func (c *documentController) Preview(ctx *fiber.Ctx) error {
	if c.hub == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "live preview is not enabled")
	}
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		initial, err := json.Marshal(map[string]interface{}{
			"type": events.DocumentSnapshot,
			"data": c.service.Current(),
		})
		if err != nil {
			c.logger.Error("DocumentController", "Failed to encode snapshot", map[string]interface{}{"error": err.Error()})
			initial = nil
		}
		c.logger.Info("DocumentController", "Starting preview session", nil)
		internalWS.ServeWs(c.hub, conn, initial)
		c.logger.Info("DocumentController", "Preview session ended", nil)
	})(ctx)
}
