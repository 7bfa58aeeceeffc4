package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type listParams struct {
	Q    string `query:"q" validate:"max=5"`
	Page int    `query:"page" validate:"omitempty,min=1"`
}

type createBody struct {
	Name string `json:"name" validate:"required"`
}

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(RequestLogger())

	app.Get("/list", ValidateQuery[listParams](), func(c *fiber.Ctx) error {
		return c.JSON(Query[listParams](c))
	})
	app.Post("/create", ValidateBody[createBody](), func(c *fiber.Ctx) error {
		return c.JSON(Body[createBody](c))
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	admin := app.Group("/admin", AdminOnly("secret"))
	admin.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	open := app.Group("/open", AdminOnly(""))
	open.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return out
}

func TestValidateQuery(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/list?q=abc&page=2", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decode(t, resp)
	if body["Q"] != "abc" || body["Page"] != float64(2) {
		t.Errorf("unexpected params %v", body)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/list?q=toolong", nil))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	fields, _ := decode(t, resp)["fields"].(map[string]interface{})
	if _, ok := fields["Q"]; !ok {
		t.Errorf("expected a field error for Q, got %v", fields)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/list?page=abc", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unparsable page, got %d", resp.StatusCode)
	}
}

func TestValidateQueryDoesNotLeakBetweenRequests(t *testing.T) {
	app := newTestApp()

	app.Test(httptest.NewRequest(http.MethodGet, "/list?q=abc&page=3", nil))
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/list", nil))
	body := decode(t, resp)
	if body["Q"] != "" || body["Page"] != float64(0) {
		t.Fatalf("expected empty params, got %v", body)
	}
}

func TestValidateBody(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"name":"x"}`, http.StatusOK},
		{"missing field", `{}`, http.StatusUnprocessableEntity},
		{"malformed", `{"name":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/create", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	app := newTestApp()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if body := decode(t, resp); body["error"] == "boom" {
		t.Error("internal error text leaked to the client")
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil))
	if resp.StatusCode != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", resp.StatusCode)
	}
	if body := decode(t, resp); body["error"] != "short and stout" {
		t.Errorf("expected fiber error message, got %v", body)
	}
}

func TestAdminOnly(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing key", "/admin/ping", "", http.StatusUnauthorized},
		{"wrong key", "/admin/ping", "nope", http.StatusForbidden},
		{"valid key", "/admin/ping", "secret", http.StatusOK},
		{"bearer prefix", "/admin/ping", "Bearer secret", http.StatusOK},
		{"auth disabled", "/open/ping", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	app := newTestApp()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/open/ping", nil))
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("expected a generated request ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/open/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, _ = app.Test(req)
	if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("expected incoming request ID to be echoed, got %q", got)
	}
}
