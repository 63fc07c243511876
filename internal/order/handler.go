package order

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/hvmc-store-backend/internal/admin"
	"github.com/wichananm65/hvmc-store-backend/internal/pricing"
	"github.com/wichananm65/hvmc-store-backend/internal/user"
)

// Handler exposes order operations over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterPublicRoutes registers checkout. mw runs before the handler and is
// expected to populate the JWT local when a token is sent.
func (h *Handler) RegisterPublicRoutes(r fiber.Router, mw ...fiber.Handler) {
	r.Post("/api/v1/orders", append(mw, h.createOrder)...)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/api/v1/orders/my-orders", h.myOrders)
	r.Get("/api/v1/orders/:id<int>", h.getOrder)
	r.Put("/api/v1/orders/:id<int>", h.updateOrder)
	r.Patch("/api/v1/orders/:id<int>", h.updateOrder)
	r.Delete("/api/v1/orders/:id<int>", h.deleteOrder)
}

// RegisterAdminRoutes expects a router already mounted under /api/v1/admin
// and registers only the actions enabled in cfg.
func (h *Handler) RegisterAdminRoutes(r fiber.Router, cfg admin.Config) {
	r.Get("/orders", h.listOrders)
	if cfg.OrderActionEnabled(admin.ExportCSV) {
		r.Get("/orders/export.csv", h.exportCSV)
	}
	if cfg.OrderActionEnabled(admin.MarkSent) {
		r.Post("/orders/mark-sent", h.markSent(true))
	}
	if cfg.OrderActionEnabled(admin.MarkUnsent) {
		r.Post("/orders/mark-unsent", h.markSent(false))
	}
}

type createOrderRequest struct {
	Guest
	Items []ItemRequest `json:"items"`
}

type idsRequest struct {
	IDs []int `json:"ids"`
}

func callerFromCtx(c *fiber.Ctx) Caller {
	id, _ := user.GetUserIDFromCtx(c)
	return Caller{UserID: id, IsStaff: user.IsStaffFromCtx(c)}
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	payload := new(createOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	identity := Identity{Guest: payload.Guest}
	if id, err := user.GetUserIDFromCtx(c); err == nil {
		identity.ClientID = id
	}

	created, err := h.service.Create(c.UserContext(), identity, payload.Items)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) myOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	orders, err := h.service.ListForClient(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	o, err := h.service.Get(c.UserContext(), callerFromCtx(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) updateOrder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	var patch Patch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	updated, err := h.service.Update(c.UserContext(), callerFromCtx(c), id, patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteOrder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := h.service.Delete(c.UserContext(), callerFromCtx(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) listOrders(c *fiber.Ctx) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	orders, err := h.service.List(c.UserContext(), callerFromCtx(c), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

// exportCSV accepts ?ids=1,2,3 to export a selection, otherwise every order
// matching ?is_sent.
func (h *Handler) exportCSV(c *fiber.Ctx) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	ids, err := parseIDs(c.Query("ids"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid ids"})
	}

	rows, err := h.service.ExportRows(c.UserContext(), callerFromCtx(c), ids, f)
	if err != nil {
		return writeError(c, err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	return c.Send(buf.Bytes())
}

func (h *Handler) markSent(sent bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req idsRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
		n, err := h.service.SetSent(c.UserContext(), callerFromCtx(c), req.IDs, sent)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"updated": n, "is_sent": sent})
	}
}

func filterFromQuery(c *fiber.Ctx) (Filter, error) {
	var f Filter
	if v := c.Query("is_sent"); v != "" {
		sent, err := strconv.ParseBool(v)
		if err != nil {
			return Filter{}, errors.New("invalid is_sent")
		}
		f.IsSent = &sent
	}
	return f, nil
}

func parseIDs(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func writeError(c *fiber.Ctx, err error) error {
	var verr *pricing.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": verr.Err.Error(), "field": verr.Field})
	case errors.Is(err, ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
	case errors.Is(err, ErrPermissionDenied):
		if _, authErr := user.GetUserIDFromCtx(c); authErr != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
}
