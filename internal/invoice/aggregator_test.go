package invoice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/CarLogiLine/CarLogiLine/internal/car"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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
	if err := db.AutoMigrate(&car.Car{}, &Invoice{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedCar(t *testing.T, db *gorm.DB, clientID string, status car.StorageStatus, total string) *car.Car {
	t.Helper()
	c := &car.Car{
		ID:            uuid.NewString(),
		VIN:           uuid.NewString()[:17],
		ClientID:      clientID,
		StorageStatus: status,
		Prof:          dec(total),
	}
	car.RecomputeTotal(c)
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed car: %v", err)
	}
	return c
}

func issue(t *testing.T, svc *Service, clientID string) *Invoice {
	t.Helper()
	inv, err := svc.IssueInvoice(context.Background(), IssueInvoiceInput{
		ClientID:  clientID,
		IssueDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("IssueInvoice: %v", err)
	}
	return inv
}

func TestIssueInvoiceDefaults(t *testing.T) {
	svc := NewService(setupTestDB(t))

	inv := issue(t, svc, "client-1")
	if inv.Status != StatusUnpaid {
		t.Fatalf("expected unpaid, got %s", inv.Status)
	}
	if !inv.Amount.Equal(decimal.Zero) {
		t.Fatalf("new invoice amount must be zero, got %s", inv.Amount)
	}
}

func TestIssueInvoiceValidation(t *testing.T) {
	svc := NewService(setupTestDB(t))
	ctx := context.Background()

	if _, err := svc.IssueInvoice(ctx, IssueInvoiceInput{ClientID: " "}); err == nil {
		t.Fatalf("expected error for missing client_id")
	}

	_, err := svc.IssueInvoice(ctx, IssueInvoiceInput{
		ClientID:  "client-1",
		IssueDate: time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	if err == nil {
		t.Fatalf("expected error for due_date before issue_date")
	}
}

func TestAddCarsSumsTotals(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	c1 := seedCar(t, db, "client-1", car.StorageInWarehouse, "120.50")
	c2 := seedCar(t, db, "client-1", car.StorageInWarehouse, "79.50")
	inv := issue(t, svc, "client-1")

	inv, err := svc.AddCars(ctx, inv.ID, []string{c1.ID, c2.ID})
	if err != nil {
		t.Fatalf("AddCars: %v", err)
	}
	if !inv.Amount.Equal(dec("200.00")) {
		t.Fatalf("expected amount 200.00, got %s", inv.Amount)
	}
	if len(inv.Cars) != 2 {
		t.Fatalf("expected 2 cars on invoice, got %d", len(inv.Cars))
	}
}

func TestAddCarsRejectsForeignClient(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	other := seedCar(t, db, "client-2", car.StorageInWarehouse, "100.00")
	inv := issue(t, svc, "client-1")

	if _, err := svc.AddCars(context.Background(), inv.ID, []string{other.ID}); err == nil {
		t.Fatalf("expected error for car of another client")
	}
}

func TestAddCarsRejectsCarsOutsideWarehouse(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	sailing := seedCar(t, db, "client-1", car.StorageSailing, "100.00")
	inv := issue(t, svc, "client-1")

	if _, err := svc.AddCars(context.Background(), inv.ID, []string{sailing.ID}); err == nil {
		t.Fatalf("expected error for car not in warehouse")
	}
}

func TestRemoveCarsResums(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	c1 := seedCar(t, db, "client-1", car.StorageInWarehouse, "120.00")
	c2 := seedCar(t, db, "client-1", car.StorageInWarehouse, "80.00")
	inv := issue(t, svc, "client-1")

	if _, err := svc.AddCars(ctx, inv.ID, []string{c1.ID, c2.ID}); err != nil {
		t.Fatalf("AddCars: %v", err)
	}
	inv, err := svc.RemoveCars(ctx, inv.ID, []string{c1.ID})
	if err != nil {
		t.Fatalf("RemoveCars: %v", err)
	}
	if !inv.Amount.Equal(dec("80.00")) {
		t.Fatalf("expected amount 80.00 after removal, got %s", inv.Amount)
	}
}

func TestUpdateAmountFollowsCarTotals(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	c := seedCar(t, db, "client-1", car.StorageInWarehouse, "100.00")
	inv := issue(t, svc, "client-1")
	if _, err := svc.AddCars(ctx, inv.ID, []string{c.ID}); err != nil {
		t.Fatalf("AddCars: %v", err)
	}

	c.DaysCost = dec("25.00")
	car.RecomputeTotal(c)
	if err := db.Save(c).Error; err != nil {
		t.Fatalf("save car: %v", err)
	}

	inv, err := svc.UpdateAmount(ctx, inv.ID)
	if err != nil {
		t.Fatalf("UpdateAmount: %v", err)
	}
	if !inv.Amount.Equal(dec("125.00")) {
		t.Fatalf("expected amount 125.00, got %s", inv.Amount)
	}
}

func TestCheckOverdueTransitions(t *testing.T) {
	due := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name       string
		status     Status
		today      time.Time
		want       Status
		transition bool
	}{
		{"unpaid past due", StatusUnpaid, due.AddDate(0, 0, 1), StatusOverdue, true},
		{"unpaid on due day", StatusUnpaid, due, StatusUnpaid, false},
		{"unpaid before due", StatusUnpaid, due.AddDate(0, 0, -1), StatusUnpaid, false},
		{"paid never demoted", StatusPaid, due.AddDate(0, 0, 30), StatusPaid, false},
		{"overdue stays overdue", StatusOverdue, due.AddDate(0, 0, 30), StatusOverdue, false},
	}
	for _, tc := range cases {
		inv := &Invoice{Status: tc.status, DueDate: due}
		got := CheckOverdue(inv, tc.today)
		if got != tc.transition {
			t.Fatalf("%s: expected transition=%v, got %v", tc.name, tc.transition, got)
		}
		if inv.Status != tc.want {
			t.Fatalf("%s: expected status %s, got %s", tc.name, tc.want, inv.Status)
		}
	}
}

func TestPayAndRefreshOverdue(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	inv := issue(t, svc, "client-1")
	late := inv.DueDate.AddDate(0, 0, 5)

	inv, err := svc.RefreshOverdue(ctx, inv.ID, late)
	if err != nil {
		t.Fatalf("RefreshOverdue: %v", err)
	}
	if inv.Status != StatusOverdue {
		t.Fatalf("expected overdue, got %s", inv.Status)
	}

	inv, err = svc.Pay(ctx, inv.ID)
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}
	if inv.Status != StatusPaid {
		t.Fatalf("expected paid, got %s", inv.Status)
	}

	inv, err = svc.RefreshOverdue(ctx, inv.ID, late.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("RefreshOverdue: %v", err)
	}
	if inv.Status != StatusPaid {
		t.Fatalf("paid invoice must stay paid, got %s", inv.Status)
	}
}
