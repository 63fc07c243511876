package order

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/mock"
	"github.com/wichananm65/hvmc-store-backend/internal/admin"
)

// makeApp wires the order handler behind a bootstrap middleware that injects
// a jwt.Token when X-User-ID is set (X-Staff: 1 adds is_staff).
func makeApp(t *testing.T, cfg admin.Config) (*fiber.App, fixture) {
	f := newFixture(t)
	f.pub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	h := NewHandler(f.svc)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				claims := jwt.MapClaims{"user_id": id, "is_staff": c.Get("X-Staff") == "1"}
				c.Locals("user", &jwt.Token{Claims: claims})
			}
		}
		return c.Next()
	})
	h.RegisterPublicRoutes(app)
	h.RegisterProtectedRoutes(app)
	h.RegisterAdminRoutes(app.Group("/api/v1/admin"), cfg)
	return app, f
}

func do(t *testing.T, app *fiber.App, method, url, body, userID string, staff bool) *httptestResponse {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if staff {
		req.Header.Set("X-Staff", "1")
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	b, _ := io.ReadAll(res.Body)
	return &httptestResponse{status: res.StatusCode, body: string(b), contentType: res.Header.Get("Content-Type")}
}

type httptestResponse struct {
	status      int
	body        string
	contentType string
}

const checkoutBody = `{
	"guest_name": "Yacine", "guest_phone": "0661", "guest_wilaya": "Alger",
	"is_sent": true,
	"items": [
		{"product": 1, "quantity": 3, "longueur": 2.5, "color": "Bleu", "price": 1},
		{"product": 2, "quantity": 4}
	]
}`

func TestCreateOrder_Guest(t *testing.T) {
	app, _ := makeApp(t, admin.DefaultConfig())

	res := do(t, app, "POST", "/api/v1/orders", checkoutBody, "", false)
	if res.status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.status, res.body)
	}
	var o Order
	if err := json.Unmarshal([]byte(res.body), &o); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if o.TotalPrice.StringFixed(2) != "9000.00" || o.DeliveryPrice.StringFixed(2) != "500.00" {
		t.Fatalf("unexpected prices total=%s delivery=%s", o.TotalPrice, o.DeliveryPrice)
	}
	if o.IsSent {
		t.Fatalf("new orders must not be marked sent")
	}
	if o.ClientID != nil {
		t.Fatalf("guest order must not be linked to a client")
	}
	if !strings.Contains(res.body, `"guest_wilaya":"Alger"`) {
		t.Fatalf("expected guest fields inline, got %s", res.body)
	}
}

func TestCreateOrder_LinksAuthenticatedClient(t *testing.T) {
	app, _ := makeApp(t, admin.DefaultConfig())

	res := do(t, app, "POST", "/api/v1/orders", checkoutBody, "7", false)
	if res.status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.status)
	}
	if !strings.Contains(res.body, `"client":7`) {
		t.Fatalf("expected client 7 in body, got %s", res.body)
	}
}

func TestCreateOrder_Errors(t *testing.T) {
	app, f := makeApp(t, admin.DefaultConfig())

	res := do(t, app, "POST", "/api/v1/orders", `{"items":[{"product":1,"quantity":0}]}`, "", false)
	if res.status != fiber.StatusBadRequest || !strings.Contains(res.body, "items[0].quantity") {
		t.Fatalf("expected 400 naming the field, got %d: %s", res.status, res.body)
	}

	res = do(t, app, "POST", "/api/v1/orders", `{"items":[{"product":1,"quantity":1,"longueur":2.555}]}`, "", false)
	if res.status != fiber.StatusBadRequest || !strings.Contains(res.body, "items[0].length") {
		t.Fatalf("expected 400 for a length finer than cents, got %d: %s", res.status, res.body)
	}

	res = do(t, app, "POST", "/api/v1/orders", `{"items":[]}`, "", false)
	if res.status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for empty items, got %d", res.status)
	}

	res = do(t, app, "POST", "/api/v1/orders", `{"items":[{"product":404,"quantity":1}]}`, "", false)
	if res.status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", res.status)
	}

	res = do(t, app, "POST", "/api/v1/orders", `{"items":`, "", false)
	if res.status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", res.status)
	}

	if all, _ := f.repo.List(context.Background(), Filter{}); len(all) != 0 {
		t.Fatalf("failed requests must not persist orders, found %d", len(all))
	}
}

func TestOrderDetail_OwnershipAndUpdate(t *testing.T) {
	app, _ := makeApp(t, admin.DefaultConfig())
	do(t, app, "POST", "/api/v1/orders", checkoutBody, "7", false)

	if res := do(t, app, "GET", "/api/v1/orders/1", "", "7", false); res.status != fiber.StatusOK {
		t.Fatalf("owner should read order, got %d", res.status)
	}
	if res := do(t, app, "GET", "/api/v1/orders/1", "", "8", false); res.status != fiber.StatusNotFound {
		t.Fatalf("non-owner should get 404, got %d", res.status)
	}
	if res := do(t, app, "GET", "/api/v1/orders/1", "", "", false); res.status != fiber.StatusUnauthorized {
		t.Fatalf("anonymous should get 401, got %d", res.status)
	}

	res := do(t, app, "PATCH", "/api/v1/orders/1", `{"is_sent":true}`, "7", false)
	if res.status != fiber.StatusOK || !strings.Contains(res.body, `"is_sent":true`) {
		t.Fatalf("expected sent flag updated, got %d: %s", res.status, res.body)
	}
	if !strings.Contains(res.body, `"total_price":"9000"`) {
		t.Fatalf("total must be unchanged, got %s", res.body)
	}

	res = do(t, app, "GET", "/api/v1/orders/my-orders", "", "7", false)
	var mine []Order
	if err := json.Unmarshal([]byte(res.body), &mine); err != nil || len(mine) != 1 {
		t.Fatalf("expected one order in history, got %s (%v)", res.body, err)
	}

	if res := do(t, app, "DELETE", "/api/v1/orders/1", "", "8", false); res.status != fiber.StatusNotFound {
		t.Fatalf("non-owner delete should get 404, got %d", res.status)
	}
	if res := do(t, app, "DELETE", "/api/v1/orders/1", "", "7", false); res.status != fiber.StatusNoContent {
		t.Fatalf("owner delete should get 204, got %d", res.status)
	}
}

func TestAdminRoutes_FollowConfig(t *testing.T) {
	app, _ := makeApp(t, admin.Config{Orders: []admin.Action{admin.MarkSent}})

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Method+" "+r.Path] = true
		}
	}
	if !routes["POST /api/v1/admin/orders/mark-sent"] {
		t.Fatalf("expected mark-sent route")
	}
	if routes["POST /api/v1/admin/orders/mark-unsent"] || routes["GET /api/v1/admin/orders/export.csv"] {
		t.Fatalf("disabled admin actions must not be registered")
	}
}

func TestAdminMarkSentAndExport(t *testing.T) {
	app, _ := makeApp(t, admin.DefaultConfig())
	do(t, app, "POST", "/api/v1/orders", checkoutBody, "", false)
	do(t, app, "POST", "/api/v1/orders", checkoutBody, "7", false)

	if res := do(t, app, "POST", "/api/v1/admin/orders/mark-sent", `{"ids":[1,2]}`, "7", false); res.status != fiber.StatusForbidden {
		t.Fatalf("non-staff should get 403, got %d", res.status)
	}

	res := do(t, app, "POST", "/api/v1/admin/orders/mark-sent", `{"ids":[1,2]}`, "1", true)
	if res.status != fiber.StatusOK || !strings.Contains(res.body, `"updated":2`) {
		t.Fatalf("expected 2 orders updated, got %d: %s", res.status, res.body)
	}

	res = do(t, app, "GET", "/api/v1/admin/orders?is_sent=false", "", "1", true)
	if res.status != fiber.StatusOK || strings.TrimSpace(res.body) != "[]" {
		t.Fatalf("expected no unsent orders, got %d: %s", res.status, res.body)
	}

	res = do(t, app, "GET", "/api/v1/admin/orders/export.csv?ids=2", "", "1", true)
	if res.status != fiber.StatusOK {
		t.Fatalf("expected 200 for export, got %d", res.status)
	}
	if !strings.HasPrefix(res.contentType, "text/csv") {
		t.Fatalf("expected csv content type, got %q", res.contentType)
	}
	lines := strings.Split(strings.TrimSpace(res.body), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "2,") {
		t.Fatalf("expected header and one row for order 2, got %q", res.body)
	}

	if res := do(t, app, "GET", "/api/v1/admin/orders/export.csv?ids=x", "", "1", true); res.status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for bad ids, got %d", res.status)
	}
}
