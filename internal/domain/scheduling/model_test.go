package scheduling

import "testing"

func TestDaySlotsGrid(t *testing.T) {
	slots := DaySlots()
	if len(slots) != 17 {
		t.Fatalf("expected 17 slots, got %d", len(slots))
	}
	if slots[0] != "09:00" {
		t.Errorf("first slot = %s, want 09:00", slots[0])
	}
	if slots[len(slots)-1] != "17:00" {
		t.Errorf("last slot = %s, want 17:00", slots[len(slots)-1])
	}
	for _, s := range slots {
		if s == "17:30" {
			t.Error("17:30 must not be a bookable slot")
		}
	}
}

func TestValidSlotTime(t *testing.T) {
	valid := []string{"09:00", "09:30", "12:00", "16:30", "17:00"}
	for _, v := range valid {
		if !ValidSlotTime(v) {
			t.Errorf("ValidSlotTime(%q) = false, want true", v)
		}
	}
	invalid := []string{"08:30", "17:30", "09:15", "9:00", "25:00", "", "noon"}
	for _, v := range invalid {
		if ValidSlotTime(v) {
			t.Errorf("ValidSlotTime(%q) = true, want false", v)
		}
	}
}

func TestValidDate(t *testing.T) {
	if !ValidDate("2025-03-14") {
		t.Error("expected 2025-03-14 to be valid")
	}
	for _, v := range []string{"2025-13-01", "14-03-2025", "2025-3-4", "", "tomorrow"} {
		if ValidDate(v) {
			t.Errorf("ValidDate(%q) = true, want false", v)
		}
	}
}
