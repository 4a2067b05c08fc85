package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/loopbridge/internal/version"
)

// HealthResponse is the unauthenticated liveness probe body.
type HealthResponse struct {
	Body struct {
		Status string `json:"status" example:"ok" doc:"Process liveness"`
	}
}

// VersionResponse carries build metadata.
type VersionResponse struct {
	Body version.Info
}

// EngineStatus describes the tracked engine identity.
type EngineStatus struct {
	ID          int32  `json:"id" example:"1337" doc:"Engine instance identifier"`
	Host        string `json:"host" example:"127.0.0.1" doc:"Engine host"`
	Version     string `json:"version" example:"0.3.1" doc:"Engine version string"`
	Established bool   `json:"established" doc:"Whether an engine identity has been recorded"`
}

// StatusResponse is the full bridge status body.
type StatusResponse struct {
	Body struct {
		Connected   bool         `json:"connected" doc:"Whether both OSC endpoints are up"`
		SendPort    int          `json:"send_port" example:"9000" doc:"Engine command port, -1 when down"`
		ReceivePort int          `json:"receive_port" example:"9001" doc:"Local listen port, -1 when down"`
		Countdown   int          `json:"countdown" example:"5" doc:"Liveness countdown in ticks"`
		Pinged      bool         `json:"pinged" doc:"Whether the identity probe was sent this session"`
		Engine      EngineStatus `json:"engine"`
		LEDCount    int          `json:"led_count" example:"12" doc:"Number of tracked LED slots"`
		Device      string       `json:"device" example:"FCB1010" doc:"Configured MIDI output port"`
		UpdatedAt   time.Time    `json:"updated_at" doc:"When the snapshot was taken"`
	}
}

// registerStatusRoutes registers health, version, and bridge status endpoints.
func (s *Server) registerStatusRoutes() {
	// Health check stays unauthenticated for load balancers and systemd.
	huma.Register(s.api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health Check",
		Description: "Process liveness probe, no authentication required",
		Tags:        []string{"status"},
	}, func(ctx context.Context, input *struct{}) (*HealthResponse, error) {
		resp := &HealthResponse{}
		resp.Body.Status = "ok"
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Build metadata for the running binary",
		Tags:        []string{"status"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*VersionResponse, error) {
		return &VersionResponse{Body: version.Get()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Bridge Status",
		Description: "Link liveness, engine identity, and hardware configuration from the last published snapshot",
		Tags:        []string{"status"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*StatusResponse, error) {
		snap := s.options.Snapshot()

		resp := &StatusResponse{}
		resp.Body.Connected = snap.Connected
		resp.Body.SendPort = snap.SendPort
		resp.Body.ReceivePort = snap.ReceivePort
		resp.Body.Countdown = snap.Countdown
		resp.Body.Pinged = snap.Pinged
		resp.Body.Engine = EngineStatus{
			ID:          snap.Engine.ID,
			Host:        snap.Engine.Host,
			Version:     snap.Engine.Version,
			Established: snap.Engine.Established,
		}
		resp.Body.LEDCount = len(snap.LEDs)
		resp.Body.Device = snap.Device
		resp.Body.UpdatedAt = snap.UpdatedAt
		return resp, nil
	})
}
