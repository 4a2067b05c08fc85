package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smazurov/loopbridge/internal/bridge"
	"github.com/smazurov/loopbridge/internal/events"
	"github.com/smazurov/loopbridge/internal/led"
)

func testSnapshot() *bridge.Snapshot {
	return &bridge.Snapshot{
		Connected:   true,
		SendPort:    9000,
		ReceivePort: 9001,
		Countdown:   5,
		Pinged:      true,
		Engine: bridge.Engine{
			ID:          1337,
			Host:        "127.0.0.1",
			Version:     "0.3.1",
			Established: true,
		},
		LEDs: []led.LED{
			{On: true, State: led.Light},
			{On: false, State: led.Blink, BlinkTimer: 2},
		},
		Device:    "FCB1010",
		UpdatedAt: time.Now(),
	}
}

func newTestServer(username, password string) *Server {
	return NewServer(&Options{
		AuthUsername: username,
		AuthPassword: password,
		Snapshot:     testSnapshot,
		EventBus:     events.New(),
	})
}

func TestStatusEndpoint(t *testing.T) {
	server := newTestServer("", "")

	rec := httptest.NewRecorder()
	server.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		Connected bool `json:"connected"`
		Countdown int  `json:"countdown"`
		Engine    struct {
			ID          int32 `json:"id"`
			Established bool  `json:"established"`
		} `json:"engine"`
		LEDCount int `json:"led_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode status body: %v", err)
	}
	if !body.Connected || body.Countdown != 5 {
		t.Errorf("Unexpected link fields: %+v", body)
	}
	if body.Engine.ID != 1337 || !body.Engine.Established {
		t.Errorf("Unexpected engine fields: %+v", body.Engine)
	}
	if body.LEDCount != 2 {
		t.Errorf("Expected led_count 2, got %d", body.LEDCount)
	}
}

func TestLEDsEndpointCarriesPedalNumbers(t *testing.T) {
	server := newTestServer("", "")

	rec := httptest.NewRecorder()
	server.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leds", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		LEDs []struct {
			Index int    `json:"index"`
			Pedal int    `json:"pedal"`
			State string `json:"state"`
		} `json:"leds"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode leds body: %v", err)
	}
	if body.Count != 2 || len(body.LEDs) != 2 {
		t.Fatalf("Expected 2 LEDs, got %+v", body)
	}
	// Slot 0 lights pedal "1"
	if body.LEDs[0].Pedal != 1 {
		t.Errorf("Expected pedal 1 for slot 0, got %d", body.LEDs[0].Pedal)
	}
	if body.LEDs[1].State != "blink" {
		t.Errorf("Expected state blink, got %q", body.LEDs[1].State)
	}
}

func TestHealthSkipsAuth(t *testing.T) {
	server := newTestServer("admin", "secret")

	for _, path := range []string{"/api/health", "/health"} {
		rec := httptest.NewRecorder()
		server.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200 for %s without credentials, got %d", path, rec.Code)
		}
	}
}

func TestBasicAuthRequired(t *testing.T) {
	server := newTestServer("admin", "secret")

	rec := httptest.NewRecorder()
	server.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without credentials, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization",
		"Basic "+base64.StdEncoding.EncodeToString([]byte("admin:secret")))
	rec = httptest.NewRecorder()
	server.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with credentials, got %d", rec.Code)
	}

	// SSE clients cannot set headers; creds ride a query parameter
	req = httptest.NewRequest(http.MethodGet, "/api/status?auth="+
		base64.StdEncoding.EncodeToString([]byte("admin:secret")), nil)
	rec = httptest.NewRecorder()
	server.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with query credentials, got %d", rec.Code)
	}
}
