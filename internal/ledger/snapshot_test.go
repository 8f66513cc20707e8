package ledger

import (
	"testing"
)

func TestSnapshotRoundTripPreservesOrder(t *testing.T) {
	snap := &Snapshot{}
	snap.Append(300, 1500)
	snap.Append(100, 1000)
	snap.Append(200, 1000)

	data, err := snap.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if want := `{"300":1500,"100":1000,"200":1000}`; string(data) != want {
		t.Fatalf("unexpected encoding %s", data)
	}

	var back Snapshot
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	entries := back.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	wantIDs := []uint64{300, 100, 200}
	for i, id := range wantIDs {
		if entries[i].ID != id {
			t.Fatalf("position %d: expected %d, got %d", i, id, entries[i].ID)
		}
	}
}

func TestSnapshotEmpty(t *testing.T) {
	snap := &Snapshot{}
	data, err := snap.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Fatalf("expected {}, got %s", data)
	}
	var back Snapshot
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back.Len() != 0 {
		t.Fatalf("expected empty snapshot")
	}
}

func TestSnapshotRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "garbage"},
		{"not an object", `[1,2,3]`},
		{"non-numeric key", `{"alice":1000}`},
		{"non-numeric balance", `{"1":"lots"}`},
		{"negative balance", `{"1":-5}`},
		{"fractional balance", `{"1":10.5}`},
	}
	for _, tc := range cases {
		var snap Snapshot
		if err := snap.UnmarshalJSON([]byte(tc.raw)); err == nil {
			t.Fatalf("%s: expected decode error", tc.name)
		}
	}
}
