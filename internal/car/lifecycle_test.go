package car

import (
	"testing"
	"time"
)

func TestEnterStorageStampsDateOnce(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 10)

	c := &Car{StorageStatus: StorageInPort}
	EnterStorage(c, day1)
	if c.StorageStatus != StorageInWarehouse {
		t.Fatalf("expected in_warehouse, got %s", c.StorageStatus)
	}
	if c.DateStored == nil || !c.DateStored.Equal(day1) {
		t.Fatalf("expected date_stored %v, got %v", day1, c.DateStored)
	}

	EnterStorage(c, day2)
	if !c.DateStored.Equal(day1) {
		t.Fatalf("date_stored must not move on repeat entry, got %v", c.DateStored)
	}
}

func TestDaysInStorage(t *testing.T) {
	stored := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c := &Car{StorageStatus: StorageInWarehouse, DateStored: &stored}

	if got := DaysInStorage(c, stored.AddDate(0, 0, 7)); got != 7 {
		t.Fatalf("expected 7 days, got %d", got)
	}
	if got := DaysInStorage(c, stored); got != 0 {
		t.Fatalf("expected 0 days on entry day, got %d", got)
	}
	if got := DaysInStorage(c, stored.AddDate(0, 0, -1)); got != 0 {
		t.Fatalf("expected clamp to 0 for past today, got %d", got)
	}
}

func TestDaysInStorageOutsideWarehouse(t *testing.T) {
	stored := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	today := stored.AddDate(0, 0, 5)

	c := &Car{StorageStatus: StorageSailing, DateStored: &stored}
	if got := DaysInStorage(c, today); got != 0 {
		t.Fatalf("expected 0 for non-warehouse status, got %d", got)
	}

	c = &Car{StorageStatus: StorageInWarehouse}
	if got := DaysInStorage(c, today); got != 0 {
		t.Fatalf("expected 0 without date_stored, got %d", got)
	}
}
