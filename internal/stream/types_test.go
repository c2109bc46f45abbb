package stream

import (
	"testing"
	"time"
)

func TestParseFrame(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, f Frame)
	}{
		{
			name:  "delta update",
			input: `{"type":"market_update","delta_data":{"close":101.5,"volume":300}}`,
			check: func(t *testing.T, f Frame) {
				if f.Type != TypeMarketUpdate {
					t.Errorf("Type = %q", f.Type)
				}
				if f.Delta()["close"] != 101.5 {
					t.Errorf("close = %v, want 101.5", f.Delta()["close"])
				}
			},
		},
		{
			name:  "full market_data used when delta absent",
			input: `{"type":"market_update","market_data":{"open":100.0}}`,
			check: func(t *testing.T, f Frame) {
				if f.Delta()["open"] != 100.0 {
					t.Errorf("open = %v, want 100.0", f.Delta()["open"])
				}
			},
		},
		{
			name:  "delta_data preferred over market_data",
			input: `{"type":"market_update","market_data":{"close":1.0},"delta_data":{"close":2.0}}`,
			check: func(t *testing.T, f Frame) {
				if f.Delta()["close"] != 2.0 {
					t.Errorf("close = %v, want delta_data value 2.0", f.Delta()["close"])
				}
			},
		},
		{
			name:  "audio_info note pairs",
			input: `{"type":"market_update","delta_data":{},"audio_info":{"notes":[[60,100],[64,80]],"duration":0.5}}`,
			check: func(t *testing.T, f Frame) {
				if f.Event == nil {
					t.Fatal("Event is nil")
				}
				if len(f.Event.Notes) != 2 {
					t.Fatalf("len(Notes) = %d, want 2", len(f.Event.Notes))
				}
				if f.Event.Notes[0].Pitch != 60 || f.Event.Notes[0].Velocity != 100 {
					t.Errorf("Notes[0] = %+v", f.Event.Notes[0])
				}
				if f.Event.Duration != 0.5 {
					t.Errorf("Duration = %v, want 0.5", f.Event.Duration)
				}
			},
		},
		{
			name:    "invalid json",
			input:   `{not json`,
			wantErr: true,
		},
		{
			name:    "missing type",
			input:   `{"delta_data":{"close":1.0}}`,
			wantErr: true,
		},
		{
			name:    "short note pair",
			input:   `{"type":"market_update","audio_info":{"notes":[[60]],"duration":0.5}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := parseFrame([]byte(tt.input), now)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFrame failed: %v", err)
			}
			if !f.ReceivedAt.Equal(now) {
				t.Errorf("ReceivedAt = %v, want %v", f.ReceivedAt, now)
			}
			if tt.check != nil {
				tt.check(t, f)
			}
		})
	}
}
