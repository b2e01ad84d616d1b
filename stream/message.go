package stream

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pthm-cable/xnoise/noisemap"
	"github.com/pthm-cable/xnoise/telemetry"
)

// Message types sent by the server.
const (
	TypeHeader = "header"
	TypeRow    = "row"
	TypeDone   = "done"
	TypeError  = "error"
)

// Request asks the server for one map. Node selects which graph module to
// render; empty means the configured root.
type Request struct {
	ID         string              `json:"id,omitempty"`
	Node       string              `json:"node,omitempty"`
	Projection noisemap.Projection `json:"projection"`
	Bounds     *noisemap.Bounds    `json:"bounds,omitempty"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Seamless   bool                `json:"seamless,omitempty"`
	Normalize  bool                `json:"normalize,omitempty"`
}

// Header opens the reply to a request.
type Header struct {
	Type       string              `json:"type"`
	ID         string              `json:"id"`
	Node       string              `json:"node"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Projection noisemap.Projection `json:"projection"`
	Bounds     noisemap.Bounds     `json:"bounds"`
	Seamless   bool                `json:"seamless"`
}

// Row carries one map row. Row 0 is at Bounds.YMin. Data holds the values as
// little-endian float32 so NaN survives the trip.
type Row struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Y    int    `json:"y"`
	Data []byte `json:"data"`
}

// Values decodes the row.
func (r Row) Values() ([]float32, error) {
	if len(r.Data)%4 != 0 {
		return nil, fmt.Errorf("row %d: %d bytes is not a whole number of samples", r.Y, len(r.Data))
	}
	out := make([]float32, len(r.Data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(r.Data[4*i:]))
	}
	return out, nil
}

func encodeRow(values []float32) []byte {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	return data
}

// Done closes a successful reply.
type Done struct {
	Type  string             `json:"type"`
	ID    string             `json:"id"`
	Stats telemetry.MapStats `json:"stats"`
}

// Error closes a failed reply.
type Error struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Error string `json:"error"`
}
