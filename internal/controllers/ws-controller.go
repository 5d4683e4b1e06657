package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lab-inventory-system/internal/reconcile"
	apperrors "lab-inventory-system/pkg/errors"
	"lab-inventory-system/pkg/service"
	"lab-inventory-system/pkg/types"
	"lab-inventory-system/pkg/utils"
	ws "lab-inventory-system/pkg/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Token auth happens before the upgrade; origin policy is the proxy's job.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebsocketController upgrades the connection, registers the session with
// the hub and attaches it to the reconciliation engine.
type WebsocketController struct {
	hub        *ws.Hub
	engine     *reconcile.Engine
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewWebsocketController(hub *ws.Hub, engine *reconcile.Engine, jwtService service.JWTService, logger *zap.Logger) *WebsocketController {
	return &WebsocketController{hub: hub, engine: engine, jwtService: jwtService, logger: logger}
}

// Serve handles GET /ws?token=... — browsers cannot set an Authorization
// header on a websocket handshake, so the access token rides a query param.
func (c *WebsocketController) Serve(ctx echo.Context) error {
	token := ctx.QueryParam("token")
	if token == "" {
		return utils.ErrorResponse(ctx, apperrors.ErrEmptyAuthHeader, c.logger)
	}
	claims, err := c.jwtService.ValidateToken(token)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if claims.IsRefreshToken {
		return utils.ErrorResponse(ctx, apperrors.ErrTokenIsNotAccess, c.logger)
	}

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.logger.Warn("websocket upgrade failed", zap.Error(err))
		return err
	}

	client := ws.NewClient(c.hub, conn, claims.UserID, c.logger)
	c.hub.Register <- client
	c.engine.Attach(client)

	go client.WritePump()
	go client.ReadPump()
	return nil
}

// SetFilter registers the caller's active listing predicate for one table on
// all of their live sessions, so subsequent mutations are matched against
// what the client is actually looking at.
func (c *WebsocketController) SetFilter(ctx echo.Context) error {
	actor, err := utils.ActorFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload struct {
		Table  string       `json:"table" validate:"required,oneof=equipments transfers issues"`
		Filter types.Filter `json:"filter"`
	}
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("%v", err), c.logger)
	}

	updated := c.engine.SetFilterForUser(actor.ID, payload.Table, payload.Filter)
	return utils.SuccessResponse(ctx, map[string]int{"sessions": updated}, "filter registered", http.StatusOK)
}
