package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/ThonyMarckDEV/rci-backend/internal/auth"
)

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func TestUserAdministrationFlow(t *testing.T) {
	c := newTestAPI(t)
	c.seedUser("root@example.com", "secret1", auth.RoleSuperadmin)
	tok := c.login("root@example.com", "secret1", "admin-console")

	// create
	resp := c.post("/api/admin/users", map[string]any{
		"rol":       "brand",
		"nombres":   "Grace",
		"apellidos": "Hopper",
		"correo":    "grace@example.com",
		"password":  "secret1",
	}, bearerHeader(tok))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create user: %d", resp.StatusCode)
	}
	created := decode[auth.User](t, resp)
	if created.ID == "" || created.Role != auth.RoleBrand {
		t.Fatalf("unexpected created user: %+v", created)
	}

	// duplicate email
	resp = c.post("/api/admin/users", map[string]any{
		"rol":       "brand",
		"nombres":   "Grace",
		"apellidos": "Hopper",
		"correo":    "grace@example.com",
		"password":  "secret1",
	}, bearerHeader(tok))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate email: %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	// get
	resp = c.get("/api/admin/users/"+created.ID, nil, bearerHeader(tok))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get user: %d", resp.StatusCode)
	}
	got := decode[auth.User](t, resp)
	if got.Email != "grace@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}

	// list with role filter
	resp = c.get("/api/admin/users", url.Values{"rol": {"brand"}}, bearerHeader(tok))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list users: %d", resp.StatusCode)
	}
	listed := decode[struct {
		Users []auth.User `json:"users"`
	}](t, resp)
	if len(listed.Users) != 1 || listed.Users[0].ID != created.ID {
		t.Fatalf("unexpected listing: %+v", listed.Users)
	}

	// toggle status
	resp = c.patch("/api/admin/users/"+created.ID+"/status", nil, bearerHeader(tok))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle status: %d", resp.StatusCode)
	}
	toggled := decode[map[string]any](t, resp)
	if toggled["estado"] != auth.AccountInactive {
		t.Fatalf("unexpected status: %v", toggled)
	}

	// the deactivated account cannot log in
	resp = c.post("/api/login", map[string]any{"correo": "grace@example.com", "password": "secret1"}, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("login on deactivated account: %d, want 403", resp.StatusCode)
	}
	resp.Body.Close()

	// audit log captured the administrative actions
	resp = c.get("/api/admin/logs", nil, bearerHeader(tok))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list logs: %d", resp.StatusCode)
	}
	logs := decode[struct {
		Logs []auth.AuditEntry `json:"logs"`
	}](t, resp)
	if len(logs.Logs) < 2 {
		t.Fatalf("expected login + admin actions in the log, got %d entries", len(logs.Logs))
	}
	// Newest entries come first.
	for i := 1; i < len(logs.Logs); i++ {
		if logs.Logs[i-1].ID < logs.Logs[i].ID {
			t.Fatalf("log listing not newest-first: %q before %q", logs.Logs[i-1].ID, logs.Logs[i].ID)
		}
	}
}

func TestChangeOwnPassword(t *testing.T) {
	c := newTestAPI(t)
	c.seedUser("ada@example.com", "secret1", auth.RoleCustomer)
	tok := c.login("ada@example.com", "secret1", "laptop")

	// Wrong current password is rejected.
	resp := c.post("/api/account/password", map[string]any{
		"passwordActual": "wrong-1",
		"passwordNuevo":  "secret2",
	}, bearerHeader(tok))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong current password: %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.post("/api/account/password", map[string]any{
		"passwordActual": "secret1",
		"passwordNuevo":  "secret2",
	}, bearerHeader(tok))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("change own password: %d", resp.StatusCode)
	}
	out := decode[map[string]any](t, resp)
	if out["success"] != true {
		t.Fatalf("unexpected body: %v", out)
	}

	// The old password stops working, the new one logs in.
	resp = c.post("/api/login", map[string]any{"correo": "ada@example.com", "password": "secret1"}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("old password after change: %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
	c.login("ada@example.com", "secret2", "laptop")
}

func TestUserAdministrationRequiresSuperadmin(t *testing.T) {
	c := newTestAPI(t)
	c.seedUser("admin@example.com", "secret1", auth.RoleAdmin)
	tok := c.login("admin@example.com", "secret1", "console")

	for _, route := range []string{"/api/admin/users", "/api/admin/logs"} {
		resp := c.get(route, nil, bearerHeader(tok))
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s as admin: %d, want 403", route, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestUpdateUserEndpoint(t *testing.T) {
	c := newTestAPI(t)
	c.seedUser("root@example.com", "secret1", auth.RoleSuperadmin)
	target := c.seedUser("ada@example.com", "secret1", auth.RoleCustomer)
	tok := c.login("root@example.com", "secret1", "console")

	req, err := http.NewRequest(http.MethodPut, c.baseURL+"/api/admin/users/"+target.ID,
		jsonBody(t, map[string]any{"nombres": "Augusta", "rol": "admin"}))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update user: %d", resp.StatusCode)
	}
	updated := decode[auth.User](t, resp)
	if updated.FirstName != "Augusta" || updated.Role != auth.RoleAdmin {
		t.Fatalf("update not applied: %+v", updated)
	}
}
