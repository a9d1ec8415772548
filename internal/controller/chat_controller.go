package controller

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"ai-bizops-be/internal/dto"
	"ai-bizops-be/internal/pkg/logger"
	"ai-bizops-be/internal/pkg/serverutils"
	"ai-bizops-be/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendQuery(ctx *fiber.Ctx) error
	ListConversations(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	ClearConversation(ctx *fiber.Ctx) error
	StreamQuery(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	log         logger.ILogger
}

func NewChatController(chatService service.IChatService, log logger.ILogger) IChatController {
	return &chatController{
		chatService: chatService,
		log:         log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("query", c.SendQuery)
	h.Get("conversations", c.ListConversations)
	h.Get("conversations/:id", c.GetHistory)
	h.Delete("conversations/:id", c.ClearConversation)
	h.Get("stream", c.StreamQuery)
}

func (c *chatController) SendQuery(ctx *fiber.Ctx) error {
	var req dto.SendQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.chatService.SendQuery(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Query processed", res))
}

func (c *chatController) ListConversations(ctx *fiber.Ctx) error {
	res, err := c.chatService.ListConversations(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversations", res))
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid conversation ID"))
	}

	res, err := c.chatService.GetHistory(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversation history", res))
}

func (c *chatController) ClearConversation(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid conversation ID"))
	}

	if err := c.chatService.ClearConversation(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Conversation cleared", nil))
}

// StreamQuery upgrades to a websocket, reads one query frame and relays the
// pipeline's progress events until response_end.
func (c *chatController) StreamQuery(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req dto.StreamQueryRequest
		if err := json.Unmarshal(raw, &req); err != nil || req.Query == "" {
			_ = conn.WriteJSON(fiber.Map{"type": "error", "message": "Invalid query frame"})
			return
		}

		c.log.Info("chat_controller", "Starting stream session", map[string]any{
			"conversation_id": req.ConversationId,
		})

		events, conversationId := c.chatService.StreamQuery(context.Background(), &req)

		_ = conn.WriteJSON(fiber.Map{"type": "conversation", "conversation_id": conversationId})

		for event := range events {
			if err := conn.WriteJSON(event); err != nil {
				c.log.Warn("chat_controller", "client went away mid-stream", map[string]any{
					"conversation_id": conversationId,
				})
				// Drain so the pipeline goroutine can finish
				for range events {
				}
				return
			}
		}
	})(ctx)
}
