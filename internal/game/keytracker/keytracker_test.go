package keytracker

import "testing"

func TestUpdateReportsEdgesOnly(t *testing.T) {
	var k KeyStateTracker
	states := []bool{false, true, true, false, true}
	want := []bool{false, true, false, false, true}
	for i, pressed := range states {
		if got := k.update(pressed); got != want[i] {
			t.Errorf("tick %d: update(%v) = %v, want %v", i, pressed, got, want[i])
		}
	}
}
