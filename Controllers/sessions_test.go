package Controllers_test

import (
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"

	"AgentTask/Models"
)

func TestLoginWrongPasswordOpensNoSession(t *testing.T) {
	app := newTestApp(t)
	agentID, _ := registerTestAgent(t, app, "wrongpw@example.com")

	resp := postForm(t, app, "/api/agents/login", url.Values{
		"agent_id": {agentID},
		"password": {"definitely-wrong"},
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	var count int64
	Models.DB.Model(&Models.AgentSession{}).Where("agent_id = ?", agentID).Count(&count)
	if count != 0 {
		t.Fatalf("failed login must not open a session, have %d", count)
	}
}

func TestLoginUnknownAgent(t *testing.T) {
	app := newTestApp(t)
	resp := postForm(t, app, "/api/agents/login", url.Values{
		"agent_id": {"AGT000000"},
		"password": {"whatever1"},
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestDoubleLoginLeavesOneOpenSession(t *testing.T) {
	app := newTestApp(t)
	agentID, password := registerTestAgent(t, app, "double@example.com")

	loginTestAgent(t, app, agentID, password)
	loginTestAgent(t, app, agentID, password)

	var open, total int64
	Models.DB.Model(&Models.AgentSession{}).
		Where("agent_id = ? AND logout_time IS NULL", agentID).
		Count(&open)
	Models.DB.Model(&Models.AgentSession{}).Where("agent_id = ?", agentID).Count(&total)
	if open != 1 {
		t.Fatalf("expected exactly one open session, got %d", open)
	}
	if total != 2 {
		t.Fatalf("expected two session rows, got %d", total)
	}

	var closed Models.AgentSession
	if err := Models.DB.Where("agent_id = ? AND logout_time IS NOT NULL", agentID).
		First(&closed).Error; err != nil {
		t.Fatalf("first session should be force-closed: %v", err)
	}
	if closed.DurationMinutes == nil || *closed.DurationMinutes < 0 {
		t.Fatalf("closed session needs a non-negative duration, got %v", closed.DurationMinutes)
	}
}

func TestLoginSurvivesSessionBookkeepingFailure(t *testing.T) {
	app := newTestApp(t)
	agentID, password := registerTestAgent(t, app, "besteffort@example.com")

	// Break session bookkeeping entirely; authentication must not care.
	if err := Models.DB.Migrator().DropTable(&Models.AgentSession{}); err != nil {
		t.Fatalf("failed to drop sessions table: %v", err)
	}

	resp := postForm(t, app, "/api/agents/login", url.Values{
		"agent_id": {agentID},
		"password": {password},
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login must succeed without session tracking, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["agent_id"] != agentID {
		t.Fatalf("expected agent identity in response, got %v", body["agent_id"])
	}
	if token, _ := body["token"].(string); token == "" {
		t.Fatal("login without bookkeeping must still issue a token")
	}
	if _, present := body["session_id"]; present {
		t.Fatal("no session row was created, session_id must be absent")
	}
}

func TestLogoutClosesSession(t *testing.T) {
	app := newTestApp(t)
	agentID, password := registerTestAgent(t, app, "logout@example.com")
	cookie := loginTestAgent(t, app, agentID, password)

	resp := postForm(t, app, "/api/agents/"+agentID+"/logout", url.Values{}, cookie)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("logout returned %d", resp.StatusCode)
	}

	var open int64
	Models.DB.Model(&Models.AgentSession{}).
		Where("agent_id = ? AND logout_time IS NULL", agentID).
		Count(&open)
	if open != 0 {
		t.Fatalf("logout must close the open session, %d still open", open)
	}

	// A second logout with no open session is still a success.
	resp = postForm(t, app, "/api/agents/"+agentID+"/logout", url.Values{}, cookie)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("repeat logout returned %d", resp.StatusCode)
	}
}

func TestForceLogout(t *testing.T) {
	app := newTestApp(t)
	agentID, password := registerTestAgent(t, app, "force@example.com")
	loginTestAgent(t, app, agentID, password)

	resp := postForm(t, app, "/api/admin/force-logout/"+agentID, url.Values{})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("force logout returned %d", resp.StatusCode)
	}

	var open int64
	Models.DB.Model(&Models.AgentSession{}).
		Where("agent_id = ? AND logout_time IS NULL", agentID).
		Count(&open)
	if open != 0 {
		t.Fatalf("force logout must close the session, %d still open", open)
	}

	// No open session left: reported as such, not an error.
	resp = postForm(t, app, "/api/admin/force-logout/"+agentID, url.Values{})
	body := decodeBody(t, resp)
	if body["message"] != "Agent was not logged in" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestSessionReport(t *testing.T) {
	app := newTestApp(t)
	agentID, password := registerTestAgent(t, app, "report@example.com")
	loginTestAgent(t, app, agentID, password)

	resp := getJSON(t, app, "/api/admin/session-report?agent_id="+agentID)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("report returned %d", resp.StatusCode)
	}
	var rows []map[string]interface{}
	if err := jsonDecode(resp, &rows); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one session row, got %d", len(rows))
	}
	if rows[0]["agent_name"] != "Test Agent" {
		t.Fatalf("expected resolved agent name, got %v", rows[0]["agent_name"])
	}
	if active, _ := rows[0]["is_active"].(bool); !active {
		t.Fatal("open session must be reported active")
	}

	if resp := getJSON(t, app, "/api/admin/session-report?date_from=31-12-1999"); resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bad date should be 400, got %d", resp.StatusCode)
	}

	resp = getJSON(t, app, "/api/admin/session-report?date_from=2099-01-01")
	var empty []map[string]interface{}
	if err := jsonDecode(resp, &empty); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("future date filter should match nothing, got %d rows", len(empty))
	}
}

func TestValidateToken(t *testing.T) {
	app := newTestApp(t)
	agentID, password := registerTestAgent(t, app, "token@example.com")
	cookie := loginTestAgent(t, app, agentID, password)

	resp := getJSON(t, app, "/api/agents/validate-token", cookie)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("validate-token returned %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["agent_id"] != agentID {
		t.Fatalf("token resolved to %v, want %s", body["agent_id"], agentID)
	}

	if resp := getJSON(t, app, "/api/agents/validate-token"); resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("missing token should be 401, got %d", resp.StatusCode)
	}
}
