package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Walks two fresh users through the task API of a running server and checks
// that neither can see or touch the other's tasks.
func main() {
	_ = godotenv.Load()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := flag.String("base", "http://127.0.0.1:"+port, "server base url")
	flag.Parse()

	c := &client{base: *base, http: &http.Client{Timeout: 10 * time.Second}}
	suffix := uuid.NewString()[:8]

	tokenA := c.signup("smoke_a_" + suffix)
	tokenB := c.signup("smoke_b_" + suffix)

	var task struct {
		ID     int64  `json:"id"`
		Title  string `json:"title"`
		Status string `json:"status"`
	}
	c.expect(http.MethodPost, "/tasks", tokenA, map[string]any{"title": "A1"}, http.StatusCreated, &task)
	log.Printf("A created task id=%d status=%s", task.ID, task.Status)

	path := fmt.Sprintf("/tasks/%d", task.ID)

	var listB []json.RawMessage
	c.expect(http.MethodGet, "/tasks", tokenB, nil, http.StatusOK, &listB)
	if len(listB) != 0 {
		log.Fatalf("B sees %d tasks, expected 0", len(listB))
	}
	c.expect(http.MethodGet, path, tokenB, nil, http.StatusNotFound, nil)
	c.expect(http.MethodPut, path, tokenB, map[string]any{"title": "x"}, http.StatusNotFound, nil)
	c.expect(http.MethodDelete, path, tokenB, nil, http.StatusNotFound, nil)
	log.Printf("B cannot reach A's task")

	c.expect(http.MethodPut, path, tokenA, map[string]any{"status": "done"}, http.StatusOK, &task)
	log.Printf("A updated task status=%s", task.Status)
	c.expect(http.MethodDelete, path, tokenA, nil, http.StatusNoContent, nil)

	var listA []json.RawMessage
	c.expect(http.MethodGet, "/tasks", tokenA, nil, http.StatusOK, &listA)
	if len(listA) != 0 {
		log.Fatalf("A still has %d tasks after delete", len(listA))
	}

	c.expect(http.MethodGet, "/tasks", "", nil, http.StatusUnauthorized, nil)

	c.expect(http.MethodDelete, "/me", tokenA, nil, http.StatusNoContent, nil)
	c.expect(http.MethodDelete, "/me", tokenB, nil, http.StatusNoContent, nil)

	log.Println("smoke ok")
}

type client struct {
	base string
	http *http.Client
}

func (c *client) signup(username string) string {
	creds := map[string]any{"username": username, "password": "pw123"}
	c.expect(http.MethodPost, "/auth/register", "", creds, http.StatusCreated, nil)

	var resp struct {
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at"`
	}
	c.expect(http.MethodPost, "/auth/login", "", creds, http.StatusOK, &resp)
	log.Printf("%s logged in, token expires %s", username, resp.ExpiresAt)
	return resp.Token
}

func (c *client) expect(method, path, token string, body any, status int, out any) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			log.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.base+path, rdr)
	if err != nil {
		log.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("%s %s: read body: %v", method, path, err)
	}
	if resp.StatusCode != status {
		log.Fatalf("%s %s: expected %d, got %d: %s", method, path, status, resp.StatusCode, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			log.Fatalf("%s %s: decode: %v (%s)", method, path, err, raw)
		}
	}
}
