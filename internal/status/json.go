package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Distance      *ReadingJSON `json:"distance_cm,omitempty"`
	Weight        *ReadingJSON `json:"weight_grams,omitempty"`
	Lid           *LidJSON     `json:"lid,omitempty"`
	Fill          *FillJSON    `json:"fill,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// ReadingJSON is a sensor value or the error that replaced it.
type ReadingJSON struct {
	Value *float64 `json:"value"`
	Error string   `json:"error,omitempty"`
}

// LidJSON is the JSON representation of the lid loop.
type LidJSON struct {
	Position string `json:"position"`
	Counter  int    `json:"counter"`
	Opened   int    `json:"opened"`
	Closed   int    `json:"closed"`
}

// FillJSON is the JSON representation of the fill loop.
type FillJSON struct {
	Phase            string `json:"phase"`
	DisinfectCounter int    `json:"disinfect_counter"`
	Filled           int    `json:"filled"`
	Disinfected      int    `json:"disinfected"`
	Aborted          int    `json:"aborted"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	LidPollMs        int64   `json:"lid_poll_ms"`
	CloseDelayMs     int64   `json:"close_delay_ms"`
	OpenDistanceCm   float64 `json:"open_distance_cm"`
	FillPollMs       int64   `json:"fill_poll_ms"`
	MaxWeightGrams   float64 `json:"max_weight_grams"`
	DisinfectDelayMs int64   `json:"disinfect_delay_ms"`
	HeartbeatMs      int64   `json:"heartbeat_ms"`
	DistanceSource   string  `json:"distance_source"`
}

func buildReading(r *Reading) *ReadingJSON {
	if r == nil {
		return nil
	}
	out := &ReadingJSON{}
	if r.Err != nil {
		out.Error = r.Err.Error()
		return out
	}
	// encoding/json rejects NaN and Inf
	if !math.IsNaN(r.Value) && !math.IsInf(r.Value, 0) {
		v := r.Value
		out.Value = &v
	}
	return out
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Distance:      buildReading(snap.Distance),
		Weight:        buildReading(snap.Weight),
		Config: ConfigJSON{
			LidPollMs:        snap.Config.LidPollMs,
			CloseDelayMs:     snap.Config.CloseDelayMs,
			OpenDistanceCm:   snap.Config.OpenDistanceCm,
			FillPollMs:       snap.Config.FillPollMs,
			MaxWeightGrams:   snap.Config.MaxWeightGrams,
			DisinfectDelayMs: snap.Config.DisinfectDelayMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			DistanceSource:   snap.Config.DistanceSource,
		},
	}

	if snap.Lid != nil {
		inner.Lid = &LidJSON{
			Position: string(snap.Lid.State.Position),
			Counter:  snap.Lid.State.Counter,
			Opened:   snap.Lid.Counts.Opened,
			Closed:   snap.Lid.Counts.Closed,
		}
	}
	if snap.Fill != nil {
		inner.Fill = &FillJSON{
			Phase:            string(snap.Fill.State.Phase),
			DisinfectCounter: snap.Fill.State.DisinfectCounter,
			Filled:           snap.Fill.Counts.Filled,
			Disinfected:      snap.Fill.Counts.Disinfected,
			Aborted:          snap.Fill.Counts.Aborted,
		}
	}
	return inner
}

// FormatJSON returns the indented JSON status for terminal output.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatCompact returns the JSON status on a single line, for log fields.
func FormatCompact(snap Snapshot) []byte {
	data, _ := json.Marshal(StatusJSON{Status: buildInner(snap)})
	return data
}
