package Controllers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"AgentTask/FiberConfig"
	"AgentTask/Models"
	"AgentTask/TaskImages"
)

// newTestApp wires the real route table against a per-test in-memory
// database and a temp image root.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	Models.Migrate(db)
	Models.DB = db
	TaskImages.Root = t.TempDir()
	return FiberConfig.NewApp()
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req, 30000)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", req.Method, req.URL.Path, err)
	}
	return resp
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return doRequest(t, app, req)
}

func getJSON(t *testing.T, app *fiber.App, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return doRequest(t, app, req)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", raw, err)
	}
	return body
}

func jsonDecode(resp *http.Response, v interface{}) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// registerTestAgent provisions an agent through the real endpoint and
// returns the generated credentials.
func registerTestAgent(t *testing.T, app *fiber.App, email string) (string, string) {
	t.Helper()
	form := url.Values{
		"name":    {"Test Agent"},
		"email":   {email},
		"mobile":  {"5550100"},
		"dob":     {"1990-01-01"},
		"country": {"US"},
		"gender":  {"other"},
	}
	resp := postForm(t, app, "/api/agents/register", form)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("register returned status %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	agentID, _ := body["agent_id"].(string)
	password, _ := body["password"].(string)
	if agentID == "" || password == "" {
		t.Fatalf("register response missing credentials: %v", body)
	}
	return agentID, password
}

// loginTestAgent logs in and returns the session cookie.
func loginTestAgent(t *testing.T, app *fiber.App, agentID, password string) *http.Cookie {
	t.Helper()
	resp := postForm(t, app, "/api/agents/login", url.Values{
		"agent_id": {agentID},
		"password": {password},
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login returned status %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login response missing token: %v", body)
	}
	return &http.Cookie{Name: "jwt", Value: token}
}

// fullForm returns a complete 29-field submission body.
func fullForm() url.Values {
	form := url.Values{}
	for _, field := range Models.FormFieldOrder {
		form.Set(field, "value-"+field)
	}
	return form
}
