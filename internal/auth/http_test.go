package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fixedBalances reports the same balance for every player.
type fixedBalances int64

func (f fixedBalances) Balance(uint64) int64 { return int64(f) }

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewHTTPHandler(NewManager(), fixedBalances(1000)).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func doAuthed(t *testing.T, method, url, token string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func TestHTTPRegister(t *testing.T) {
	srv := newAuthServer(t)

	resp, body := postJSON(t, srv.URL+"/api/auth/register", map[string]string{
		"username": "Alice_01",
		"password": "secret12",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["player_id"].(float64) == 0 {
		t.Fatalf("expected player id, got %+v", body)
	}
	if body["username"].(string) != "alice_01" {
		t.Fatalf("expected normalized username, got %v", body["username"])
	}
	if body["session_token"].(string) == "" {
		t.Fatalf("expected session token")
	}
	if int64(body["balance"].(float64)) != 1000 {
		t.Fatalf("expected balance in reply, got %v", body["balance"])
	}

	// duplicate username
	resp, _ = postJSON(t, srv.URL+"/api/auth/register", map[string]string{
		"username": "alice_01",
		"password": "secret12",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", resp.StatusCode)
	}

	// invalid password
	resp, _ = postJSON(t, srv.URL+"/api/auth/register", map[string]string{
		"username": "bob_01",
		"password": "short",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad password, got %d", resp.StatusCode)
	}

	// wrong method
	resp, _ = doAuthed(t, http.MethodGet, srv.URL+"/api/auth/register", "")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestHTTPLogin(t *testing.T) {
	srv := newAuthServer(t)
	postJSON(t, srv.URL+"/api/auth/register", map[string]string{
		"username": "alice_01",
		"password": "secret12",
	})

	resp, body := postJSON(t, srv.URL+"/api/auth/login", map[string]string{
		"username": "alice_01",
		"password": "secret12",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["session_token"].(string) == "" {
		t.Fatalf("expected session token")
	}
	if int64(body["balance"].(float64)) != 1000 {
		t.Fatalf("expected balance in reply, got %v", body["balance"])
	}

	resp, _ = postJSON(t, srv.URL+"/api/auth/login", map[string]string{
		"username": "alice_01",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.StatusCode)
	}
}

func TestHTTPMeAndLogout(t *testing.T) {
	srv := newAuthServer(t)
	_, registered := postJSON(t, srv.URL+"/api/auth/register", map[string]string{
		"username": "alice_01",
		"password": "secret12",
	})
	token := registered["session_token"].(string)

	resp, body := doAuthed(t, http.MethodGet, srv.URL+"/api/auth/me", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["username"].(string) != "alice_01" {
		t.Fatalf("unexpected me reply %+v", body)
	}
	if _, present := body["session_token"]; present {
		t.Fatalf("me reply must not mint a token: %+v", body)
	}

	resp, _ = doAuthed(t, http.MethodGet, srv.URL+"/api/auth/me", "bogus")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", resp.StatusCode)
	}

	resp, _ = doAuthed(t, http.MethodPost, srv.URL+"/api/auth/logout", token)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp, _ = doAuthed(t, http.MethodGet, srv.URL+"/api/auth/me", token)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}
