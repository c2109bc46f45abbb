package marketstate

import (
	"reflect"
	"testing"

	"github.com/audiospy/sonifier/internal/model"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		current model.Snapshot
		delta   model.Delta
		want    model.Snapshot
	}{
		{
			name:    "disjoint keys merge",
			current: model.Snapshot{"open": 100.0},
			delta:   model.Delta{"close": 101.5},
			want:    model.Snapshot{"open": 100.0, "close": 101.5},
		},
		{
			name:    "overlapping key last write wins",
			current: model.Snapshot{"close": 100.0, "volume": int64(200)},
			delta:   model.Delta{"close": 101.5},
			want:    model.Snapshot{"close": 101.5, "volume": int64(200)},
		},
		{
			name:    "delta into empty snapshot",
			current: model.Snapshot{},
			delta:   model.Delta{"rsi": 65.2},
			want:    model.Snapshot{"rsi": 65.2},
		},
		{
			name:    "nested values replaced wholesale",
			current: model.Snapshot{"ichimoku": map[string]any{"fast": 1.0, "slow": 2.0}},
			delta:   model.Delta{"ichimoku": map[string]any{"fast": 3.0}},
			want:    model.Snapshot{"ichimoku": map[string]any{"fast": 3.0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.current, tt.delta)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply_EmptyDeltaReturnsCurrent(t *testing.T) {
	current := model.Snapshot{"close": 100.0}

	if got := Apply(current, model.Delta{}); !sameMap(got, current) {
		t.Error("empty delta should return the current snapshot unchanged")
	}
	if got := Apply(current, nil); !sameMap(got, current) {
		t.Error("nil delta should return the current snapshot unchanged")
	}
}

func TestApply_InputsNotMutated(t *testing.T) {
	current := model.Snapshot{"close": 100.0, "volume": int64(200)}
	delta := model.Delta{"close": 101.5}

	Apply(current, delta)

	if current["close"] != 100.0 {
		t.Errorf("current mutated: close = %v", current["close"])
	}
	if len(delta) != 1 || delta["close"] != 101.5 {
		t.Errorf("delta mutated: %v", delta)
	}
}

func TestStore_ApplySequence(t *testing.T) {
	store := NewStore()

	if got := store.Latest(); len(got) != 0 {
		t.Fatalf("new store snapshot = %v, want empty", got)
	}

	store.Apply(model.Delta{"open": 100.0, "close": 100.0})
	snap := store.Apply(model.Delta{"close": 101.5})

	want := model.Snapshot{"open": 100.0, "close": 101.5}
	if !reflect.DeepEqual(snap, want) {
		t.Errorf("snapshot = %v, want %v", snap, want)
	}
	if !reflect.DeepEqual(store.Latest(), want) {
		t.Errorf("Latest() = %v, want %v", store.Latest(), want)
	}
}

// sameMap reports whether two snapshots are the same underlying map.
func sameMap(a, b model.Snapshot) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
