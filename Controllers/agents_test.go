package Controllers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"AgentTask/Models"
)

func TestRegisterAgentGeneratesCredentials(t *testing.T) {
	app := newTestApp(t)
	agentID, password := registerTestAgent(t, app, "first@example.com")

	if !strings.HasPrefix(agentID, "AGT") || len(agentID) != 9 {
		t.Fatalf("unexpected agent id %q", agentID)
	}
	if len(password) != 8 {
		t.Fatalf("expected 8-character password, got %q", password)
	}

	var agent Models.Agent
	if err := Models.DB.Where("agent_id = ?", agentID).First(&agent).Error; err != nil {
		t.Fatalf("agent row not stored: %v", err)
	}
	if agent.HashedPassword == password {
		t.Fatal("plaintext password must not be persisted")
	}

	var progress Models.TaskProgress
	if err := Models.DB.Where("agent_id = ?", agentID).First(&progress).Error; err != nil {
		t.Fatalf("registration must create a progress row: %v", err)
	}
	if progress.CurrentIndex != 0 {
		t.Fatalf("expected initial cursor 0, got %d", progress.CurrentIndex)
	}
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	app := newTestApp(t)
	registerTestAgent(t, app, "dup@example.com")

	resp := postForm(t, app, "/api/agents/register", url.Values{
		"name":    {"Second"},
		"email":   {"dup@example.com"},
		"mobile":  {"5550101"},
		"dob":     {"1991-02-02"},
		"country": {"US"},
		"gender":  {"other"},
	})
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", resp.StatusCode)
	}

	var progressCount int64
	Models.DB.Model(&Models.TaskProgress{}).Count(&progressCount)
	if progressCount != 1 {
		t.Fatalf("duplicate registration must not create a progress row, have %d", progressCount)
	}
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	app := newTestApp(t)
	resp := postForm(t, app, "/api/agents/register", url.Values{
		"name":  {"No Email"},
		"email": {"not-an-email"},
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for invalid input, got %d", resp.StatusCode)
	}
}

func TestResetPasswordAllowsNewLogin(t *testing.T) {
	app := newTestApp(t)
	agentID, oldPassword := registerTestAgent(t, app, "reset@example.com")

	resp := postForm(t, app, "/api/admin/reset-password/"+agentID, url.Values{})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("reset returned status %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	newPassword, _ := body["new_password"].(string)
	if newPassword == "" || newPassword == oldPassword {
		t.Fatalf("expected a fresh password, got %q", newPassword)
	}

	if resp := postForm(t, app, "/api/agents/login", url.Values{
		"agent_id": {agentID},
		"password": {oldPassword},
	}); resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("old password should be rejected, got %d", resp.StatusCode)
	}
	loginTestAgent(t, app, agentID, newPassword)
}

func TestUpdateStatusBlocksLogin(t *testing.T) {
	app := newTestApp(t)
	agentID, password := registerTestAgent(t, app, "inactive@example.com")

	req := httptest.NewRequest(http.MethodPatch, "/api/agents/"+agentID+"/status",
		strings.NewReader(`{"status":"inactive"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := doRequest(t, app, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status update returned %d", resp.StatusCode)
	}

	loginResp := postForm(t, app, "/api/agents/login", url.Values{
		"agent_id": {agentID},
		"password": {password},
	})
	if loginResp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("inactive agent login should be 403, got %d", loginResp.StatusCode)
	}
}

func TestDeleteAgentRemovesDependentsKeepsSubmissions(t *testing.T) {
	app := newTestApp(t)
	agentID, password := registerTestAgent(t, app, "delete@example.com")
	loginTestAgent(t, app, agentID, password)

	submission := Models.SubmittedForm{AgentID: agentID, FormData: []byte(`{}`)}
	if err := Models.DB.Create(&submission).Error; err != nil {
		t.Fatalf("failed to seed submission: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/agents/"+agentID, nil)
	resp := doRequest(t, app, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete returned %d", resp.StatusCode)
	}

	var sessions, progress, submissions int64
	Models.DB.Model(&Models.AgentSession{}).Where("agent_id = ?", agentID).Count(&sessions)
	Models.DB.Model(&Models.TaskProgress{}).Where("agent_id = ?", agentID).Count(&progress)
	Models.DB.Model(&Models.SubmittedForm{}).Where("agent_id = ?", agentID).Count(&submissions)
	if sessions != 0 || progress != 0 {
		t.Fatalf("dependent rows must be removed, sessions=%d progress=%d", sessions, progress)
	}
	if submissions != 1 {
		t.Fatalf("submissions must survive agent deletion, have %d", submissions)
	}
}

func TestDeleteAgentFreesEmailForReuse(t *testing.T) {
	app := newTestApp(t)
	agentID, _ := registerTestAgent(t, app, "reuse@example.com")

	req := httptest.NewRequest(http.MethodDelete, "/api/agents/"+agentID, nil)
	resp := doRequest(t, app, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete returned %d", resp.StatusCode)
	}

	// The unique email and agent_id indexes must not retain the deleted
	// rows, or re-registration breaks on a perfectly valid email.
	registerTestAgent(t, app, "reuse@example.com")

	var agents int64
	Models.DB.Unscoped().Model(&Models.Agent{}).Where("email = ?", "reuse@example.com").Count(&agents)
	if agents != 1 {
		t.Fatalf("deleted agent row must be gone from the table, have %d rows", agents)
	}
}

func TestGetAllAgentsReportsLoginState(t *testing.T) {
	app := newTestApp(t)
	agentID, password := registerTestAgent(t, app, "list@example.com")
	loginTestAgent(t, app, agentID, password)

	resp := getJSON(t, app, "/api/agents")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("list returned %d", resp.StatusCode)
	}
	defer resp.Body.Close()
	var agents []map[string]interface{}
	if err := jsonDecode(resp, &agents); err != nil {
		t.Fatalf("failed to decode agent list: %v", err)
	}
	if len(agents) != 1 {
		t.Fatalf("expected 1 agent, got %d", len(agents))
	}
	if loggedIn, _ := agents[0]["is_currently_logged_in"].(bool); !loggedIn {
		t.Fatal("agent with an open session must be reported as logged in")
	}
	if agents[0]["last_login"] == nil {
		t.Fatal("expected last_login to be set")
	}
}
