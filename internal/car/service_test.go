package car

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&Car{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRegisterCarDefaults(t *testing.T) {
	svc := NewService(NewRepo(setupTestDB(t)))

	c, err := svc.RegisterCar(context.Background(), RegisterCarInput{VIN: " wauzzz8v5ka123456 "})
	if err != nil {
		t.Fatalf("RegisterCar: %v", err)
	}
	if c.VIN != "WAUZZZ8V5KA123456" {
		t.Fatalf("expected uppercased trimmed VIN, got %q", c.VIN)
	}
	if c.StorageStatus != StorageSailing {
		t.Fatalf("expected default status sailing, got %s", c.StorageStatus)
	}
	if c.Title != TitleOurs || c.Procedure != ProcedureTransit {
		t.Fatalf("expected default title/procedure, got %s/%s", c.Title, c.Procedure)
	}
}

func TestRegisterCarValidation(t *testing.T) {
	svc := NewService(NewRepo(setupTestDB(t)))
	ctx := context.Background()

	if _, err := svc.RegisterCar(ctx, RegisterCarInput{VIN: "  "}); err == nil {
		t.Fatalf("expected error for empty vin")
	}
	if _, err := svc.RegisterCar(ctx, RegisterCarInput{VIN: "V1", Status: StorageStatus("parked")}); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestSetCostsPersistsRecomputedTotal(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepo(db))
	ctx := context.Background()

	c, err := svc.RegisterCar(ctx, RegisterCarInput{VIN: "V100"})
	if err != nil {
		t.Fatalf("RegisterCar: %v", err)
	}

	ths, sklad := dec("100.00"), dec("40.00")
	c, err = svc.SetCosts(ctx, c.ID, CostInput{THS: &ths, Sklad: &sklad})
	if err != nil {
		t.Fatalf("SetCosts: %v", err)
	}
	if !c.Total.Equal(dec("140.00")) {
		t.Fatalf("expected total 140.00, got %s", c.Total)
	}

	var stored Car
	if err := db.Where("id = ?", c.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !stored.Total.Equal(dec("140.00")) {
		t.Fatalf("persisted total must match components, got %s", stored.Total)
	}
}

func TestStoreIsIdempotent(t *testing.T) {
	svc := NewService(NewRepo(setupTestDB(t)))
	ctx := context.Background()

	c, err := svc.RegisterCar(ctx, RegisterCarInput{VIN: "V200"})
	if err != nil {
		t.Fatalf("RegisterCar: %v", err)
	}

	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c, err = svc.Store(ctx, c.ID, day1)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if c.DateStored == nil || !c.DateStored.Equal(day1) {
		t.Fatalf("expected date_stored %v, got %v", day1, c.DateStored)
	}

	c, err = svc.Store(ctx, c.ID, day1.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !c.DateStored.Equal(day1) {
		t.Fatalf("repeat store must keep first date, got %v", c.DateStored)
	}
}
