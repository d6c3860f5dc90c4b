package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/api"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/auth"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/store"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	b := auth.NewBoundary("test-secret")
	r := mux.NewRouter()
	api.New(b, 25*time.Second).Routes(r)
	sec := auth.SecConfig{RPS: 1000, Burst: 1000}
	srv := httptest.NewServer(auth.Middleware(sec, b.Tokens())(r))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { res.Body.Close() })
	var out map[string]any
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res, out
}

func registerUser(t *testing.T, srv *httptest.Server, email, username string) (id, token string) {
	t.Helper()
	res, out := doJSON(t, "POST", srv.URL+"/v1/auth/register", "", map[string]string{
		"email": email, "password": "secret1", "username": username,
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected 201 got %d (%v)", email, res.StatusCode, out)
	}
	ident, _ := out["identity"].(map[string]any)
	id, _ = ident["id"].(string)
	token, _ = out["token"].(string)
	if id == "" || token == "" {
		t.Fatalf("register %s: missing id or token in %v", email, out)
	}
	return id, token
}

func TestRegisterLoginAndMessageFlow(t *testing.T) {
	srv := setupServer(t)
	_, token := registerUser(t, srv, "ada@example.com", "ada")

	// login again with the same credentials
	res, out := doJSON(t, "POST", srv.URL+"/v1/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200 got %d (%v)", res.StatusCode, out)
	}

	// send to the global channel
	res, out = doJSON(t, "POST", srv.URL+"/v1/rooms/global/messages", token, map[string]string{
		"content": "hello everyone",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("send: expected 201 got %d (%v)", res.StatusCode, out)
	}
	if out["kind"] != string(models.KindUser) {
		t.Fatalf("expected user kind, got %v", out["kind"])
	}
	if ts, _ := out["ts"].(float64); ts == 0 {
		t.Fatalf("no server-assigned timestamp in %v", out)
	}

	// list it back
	res, out = doJSON(t, "GET", srv.URL+"/v1/rooms/global/messages", token, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200 got %d (%v)", res.StatusCode, out)
	}
	msgs, _ := out["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %v", out)
	}
}

func TestSendRejections(t *testing.T) {
	srv := setupServer(t)
	_, token := registerUser(t, srv, "ada@example.com", "ada")

	// blank content
	res, out := doJSON(t, "POST", srv.URL+"/v1/rooms/global/messages", token, map[string]string{
		"content": "   ",
	})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank content: expected 400 got %d (%v)", res.StatusCode, out)
	}

	// no token
	res, _ = doJSON(t, "POST", srv.URL+"/v1/rooms/global/messages", "", map[string]string{
		"content": "hi",
	})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401 got %d", res.StatusCode)
	}

	// announcement without admin flag
	res, _ = doJSON(t, "POST", srv.URL+"/v1/rooms/global/messages", token, map[string]string{
		"content": "notice", "kind": string(models.KindAnnouncement),
	})
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin announcement: expected 403 got %d", res.StatusCode)
	}
}

func TestDMRoomAccess(t *testing.T) {
	srv := setupServer(t)
	adaID, adaTok := registerUser(t, srv, "ada@example.com", "ada")
	zedID, zedTok := registerUser(t, srv, "zed@example.com", "zed")
	_, eveTok := registerUser(t, srv, "eve@example.com", "eve")

	// both sides resolve the same canonical room id
	res, out := doJSON(t, "GET", srv.URL+"/v1/rooms/with/"+zedID, adaTok, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("room-with: expected 200 got %d (%v)", res.StatusCode, out)
	}
	room, _ := out["room"].(string)
	res, out = doJSON(t, "GET", srv.URL+"/v1/rooms/with/"+adaID, zedTok, nil)
	if res.StatusCode != http.StatusOK || out["room"] != room {
		t.Fatalf("room-with not commutative: %v vs %q", out, room)
	}

	// self-pair rejected
	res, _ = doJSON(t, "GET", srv.URL+"/v1/rooms/with/"+adaID, adaTok, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("self room: expected 400 got %d", res.StatusCode)
	}

	// participant sends; outsider is rejected
	res, out = doJSON(t, "POST", srv.URL+"/v1/rooms/"+room+"/messages", adaTok, map[string]string{
		"content": "hi zed",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("dm send: expected 201 got %d (%v)", res.StatusCode, out)
	}
	if out["kind"] != string(models.KindDM) {
		t.Fatalf("expected dm kind, got %v", out["kind"])
	}
	res, _ = doJSON(t, "GET", srv.URL+"/v1/rooms/"+room+"/messages", eveTok, nil)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("outsider list: expected 403 got %d", res.StatusCode)
	}

	// conversation summary lands for both participants
	res, _ = doJSON(t, "GET", srv.URL+"/v1/conversations", zedTok, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("conversations: expected 200 got %d", res.StatusCode)
	}
}

func TestReversedRoomIDRejected(t *testing.T) {
	srv := setupServer(t)
	_, adaTok := registerUser(t, srv, "ada@example.com", "ada")
	zedID, zedTok := registerUser(t, srv, "zed@example.com", "zed")

	res, out := doJSON(t, "GET", srv.URL+"/v1/rooms/with/"+zedID, adaTok, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("room-with: expected 200 got %d (%v)", res.StatusCode, out)
	}
	room, _ := out["room"].(string)
	parts := strings.SplitN(room, "|", 2)
	if len(parts) != 2 {
		t.Fatalf("unexpected room id %q", room)
	}
	reversed := parts[1] + "|" + parts[0]

	res, out = doJSON(t, "POST", srv.URL+"/v1/rooms/"+room+"/messages", adaTok, map[string]string{
		"content": "hi zed",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("canonical send: expected 201 got %d (%v)", res.StatusCode, out)
	}

	// the reversed id names the same unordered pair; accepting it would
	// split the pair across two logs
	res, out = doJSON(t, "POST", srv.URL+"/v1/rooms/"+reversed+"/messages", zedTok, map[string]string{
		"content": "hi ada",
	})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("reversed send: expected 400 got %d (%v)", res.StatusCode, out)
	}
	res, _ = doJSON(t, "GET", srv.URL+"/v1/rooms/"+reversed+"/messages", zedTok, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("reversed list: expected 400 got %d", res.StatusCode)
	}

	res, out = doJSON(t, "GET", srv.URL+"/v1/rooms/"+room+"/messages", zedTok, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("canonical list: expected 200 got %d", res.StatusCode)
	}
	msgs, _ := out["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected the pair's single log to hold 1 message, got %v", out)
	}
}

func TestUsernameUniqueness(t *testing.T) {
	srv := setupServer(t)
	registerUser(t, srv, "ada@example.com", "ada")
	zedID, zedTok := registerUser(t, srv, "zed@example.com", "zed")

	res, out := doJSON(t, "POST", srv.URL+"/v1/auth/register", "", map[string]string{
		"email": "imposter@example.com", "password": "secret1", "username": "ada",
	})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate username register: expected 400 got %d (%v)", res.StatusCode, out)
	}

	res, out = doJSON(t, "PUT", srv.URL+"/v1/profiles/"+zedID, zedTok, map[string]string{
		"username": "ada",
	})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("rename to held username: expected 400 got %d (%v)", res.StatusCode, out)
	}

	// re-asserting your own handle is not a collision
	res, _ = doJSON(t, "PUT", srv.URL+"/v1/profiles/"+zedID, zedTok, map[string]string{
		"username": "zed",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("self rename: expected 200 got %d", res.StatusCode)
	}
}

func TestNavGateOverHTTP(t *testing.T) {
	srv := setupServer(t)
	id, token := registerUser(t, srv, "ada@example.com", "ada")

	// fresh member has not joined the group yet
	res, out := doJSON(t, "GET", srv.URL+"/v1/nav?route=/feed", token, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("nav: expected 200 got %d (%v)", res.StatusCode, out)
	}
	if out["state"] != "group-join-pending" || out["redirect_to"] != "/join-group" {
		t.Fatalf("expected join-pending redirect, got %v", out)
	}

	// joining flips the gate to ready
	joined := true
	res, out = doJSON(t, "PUT", srv.URL+"/v1/profiles/"+id, token, map[string]any{
		"has_joined_external_group": joined,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("profile update: expected 200 got %d (%v)", res.StatusCode, out)
	}
	res, out = doJSON(t, "GET", srv.URL+"/v1/nav?route=/feed", token, nil)
	if res.StatusCode != http.StatusOK || out["state"] != "ready" {
		t.Fatalf("expected ready, got %d %v", res.StatusCode, out)
	}
}

func TestProfileOwnerOnlyUpdate(t *testing.T) {
	srv := setupServer(t)
	adaID, _ := registerUser(t, srv, "ada@example.com", "ada")
	_, zedTok := registerUser(t, srv, "zed@example.com", "zed")

	res, _ := doJSON(t, "PUT", srv.URL+"/v1/profiles/"+adaID, zedTok, map[string]string{
		"bio": "defaced",
	})
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("cross-owner update: expected 403 got %d", res.StatusCode)
	}
}

func TestFollowAndLikeToggles(t *testing.T) {
	srv := setupServer(t)
	_, adaTok := registerUser(t, srv, "ada@example.com", "ada")
	zedID, _ := registerUser(t, srv, "zed@example.com", "zed")

	res, out := doJSON(t, "POST", srv.URL+"/v1/users/"+zedID+"/follow", adaTok, nil)
	if res.StatusCode != http.StatusOK || out["following"] != true {
		t.Fatalf("follow: expected following=true, got %d %v", res.StatusCode, out)
	}
	res, out = doJSON(t, "POST", srv.URL+"/v1/users/"+zedID+"/follow", adaTok, nil)
	if res.StatusCode != http.StatusOK || out["following"] != false {
		t.Fatalf("unfollow: expected following=false, got %d %v", res.StatusCode, out)
	}

	res, out = doJSON(t, "POST", srv.URL+"/v1/posts", adaTok, map[string]string{
		"content": "first post",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create post: expected 201 got %d (%v)", res.StatusCode, out)
	}
	postID, _ := out["id"].(string)

	res, out = doJSON(t, "POST", srv.URL+"/v1/posts/"+postID+"/like", adaTok, nil)
	if res.StatusCode != http.StatusOK || out["liked"] != true {
		t.Fatalf("like: expected liked=true, got %d %v", res.StatusCode, out)
	}
	res, out = doJSON(t, "POST", srv.URL+"/v1/posts/"+postID+"/like", adaTok, nil)
	if res.StatusCode != http.StatusOK || out["liked"] != false {
		t.Fatalf("unlike: expected liked=false, got %d %v", res.StatusCode, out)
	}
}

func TestWebSocketSubscribe(t *testing.T) {
	srv := setupServer(t)
	_, token := registerUser(t, srv, "ada@example.com", "ada")

	res, _ := doJSON(t, "POST", srv.URL+"/v1/rooms/global/messages", token, map[string]string{
		"content": "before subscribe",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("seed send failed: %d", res.StatusCode)
	}

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/rooms/global/subscribe?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	var snap []models.Message
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if len(snap) != 1 || snap[0].Content != "before subscribe" {
		t.Fatalf("unexpected initial snapshot: %v", snap)
	}

	// a new send re-delivers the full set
	res, _ = doJSON(t, "POST", srv.URL+"/v1/rooms/global/messages", token, map[string]string{
		"content": "after subscribe",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("second send failed: %d", res.StatusCode)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read second snapshot: %v", err)
	}
	if len(snap) != 2 {
		t.Fatalf("expected full 2-message set, got %d", len(snap))
	}
}
