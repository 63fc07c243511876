package cart

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func makeApp() *fiber.App {
	app := fiber.New()
	NewHandler(newService()).RegisterPublicRoutes(app)
	return app
}

func TestQuoteRoute(t *testing.T) {
	app := makeApp()

	body := `{"wilaya":"Alger","items":[{"product":1,"quantity":3,"longueur":2.5},{"product":2,"quantity":4}]}`
	req := httptest.NewRequest("POST", "/api/v1/cart/quote", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"total":"9000"`) {
		t.Fatalf("expected total 9000 in body, got %s", b)
	}
}

func TestQuoteRoute_Errors(t *testing.T) {
	app := makeApp()

	cases := []struct {
		body   string
		status int
	}{
		{`{"items":[]}`, fiber.StatusBadRequest},
		{`{"items":[{"product":1,"quantity":0}]}`, fiber.StatusBadRequest},
		{`{"items":[{"product":42,"quantity":1}]}`, fiber.StatusNotFound},
		{`{"items":`, fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("POST", "/api/v1/cart/quote", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if res.StatusCode != tc.status {
			t.Fatalf("body %s: expected %d, got %d", tc.body, tc.status, res.StatusCode)
		}
	}
}
