package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/loopbridge/internal/surface"
)

// LEDStatus is one tracked slot with its pedalboard mapping.
type LEDStatus struct {
	Index int    `json:"index" example:"0" doc:"Zero-based slot index"`
	Pedal int    `json:"pedal" example:"1" doc:"Pedal number on the board for this slot"`
	On    bool   `json:"on" doc:"Current illumination, including blink phase"`
	State string `json:"state" example:"blink" doc:"Animation state: dark, light, blink, fastblink"`
	Timer int32  `json:"timer" example:"3" doc:"Ticks until the next blink flip"`
}

// LEDListResponse lists every tracked slot.
type LEDListResponse struct {
	Body struct {
		LEDs  []LEDStatus `json:"leds"`
		Count int         `json:"count" example:"12" doc:"Number of tracked slots"`
	}
}

// registerLEDRoutes registers the read-only LED registry endpoint.
func (s *Server) registerLEDRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-leds",
		Method:      http.MethodGet,
		Path:        "/api/leds",
		Summary:     "List LEDs",
		Description: "Current state of every tracked LED slot with its pedal mapping",
		Tags:        []string{"leds"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*LEDListResponse, error) {
		snap := s.options.Snapshot()

		resp := &LEDListResponse{}
		resp.Body.LEDs = make([]LEDStatus, len(snap.LEDs))
		for i, slot := range snap.LEDs {
			resp.Body.LEDs[i] = LEDStatus{
				Index: i,
				Pedal: int(surface.HardwareNumber(i)),
				On:    slot.On,
				State: slot.State.String(),
				Timer: slot.BlinkTimer,
			}
		}
		resp.Body.Count = len(snap.LEDs)
		return resp, nil
	})
}
