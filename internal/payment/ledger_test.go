package payment

import (
	"context"
	"fmt"
	"testing"
	"time"

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
	if err := db.AutoMigrate(&Payment{}); err != nil {
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

func TestCreatePaymentFullySettled(t *testing.T) {
	svc := NewService(NewRepo(setupTestDB(t)))

	p, err := svc.CreatePayment(context.Background(), CreatePaymentInput{
		AmountDue:  dec("500.00"),
		AmountPaid: dec("500.00"),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if p.IsPartial {
		t.Fatalf("expected is_partial false when fully paid")
	}
	if !p.Balance().Equal(decimal.Zero) {
		t.Fatalf("expected zero balance, got %s", p.Balance())
	}
	if p.Status != StatusPending || p.PaymentType != TypeTransfer {
		t.Fatalf("expected pending/transfer defaults, got %s/%s", p.Status, p.PaymentType)
	}
}

func TestCreatePaymentPartial(t *testing.T) {
	svc := NewService(NewRepo(setupTestDB(t)))

	p, err := svc.CreatePayment(context.Background(), CreatePaymentInput{
		AmountDue:  dec("500.00"),
		AmountPaid: dec("400.00"),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if !p.IsPartial {
		t.Fatalf("expected is_partial true")
	}
	if !p.Balance().Equal(dec("100.00")) {
		t.Fatalf("expected balance 100.00, got %s", p.Balance())
	}
}

func TestCreatePaymentRejectsDualReference(t *testing.T) {
	svc := NewService(NewRepo(setupTestDB(t)))

	_, err := svc.CreatePayment(context.Background(), CreatePaymentInput{
		CarID:       "car-1",
		ContainerID: "cont-1",
		AmountDue:   dec("100.00"),
	})
	if err == nil {
		t.Fatalf("expected error for car+container payment")
	}
}

func TestCreatePaymentRejectsNegativeDue(t *testing.T) {
	svc := NewService(NewRepo(setupTestDB(t)))

	if _, err := svc.CreatePayment(context.Background(), CreatePaymentInput{AmountDue: dec("-1.00")}); err == nil {
		t.Fatalf("expected error for negative amount_due")
	}
}

func TestRecordPaymentRecomputesPartial(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepo(db))
	ctx := context.Background()

	p, err := svc.CreatePayment(ctx, CreatePaymentInput{AmountDue: dec("500.00")})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if !p.IsPartial {
		t.Fatalf("expected is_partial true before any payment")
	}

	p, err = svc.RecordPayment(ctx, p.ID, dec("200.00"))
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if !p.IsPartial || !p.Balance().Equal(dec("300.00")) {
		t.Fatalf("expected partial with balance 300.00, got partial=%v balance=%s", p.IsPartial, p.Balance())
	}

	p, err = svc.RecordPayment(ctx, p.ID, dec("300.00"))
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if p.IsPartial {
		t.Fatalf("expected is_partial false once settled")
	}

	var stored Payment
	if err := db.Where("id = ?", p.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.IsPartial {
		t.Fatalf("persisted is_partial must match recomputed value")
	}
}

func TestRecordPaymentOverpayment(t *testing.T) {
	svc := NewService(NewRepo(setupTestDB(t)))
	ctx := context.Background()

	p, err := svc.CreatePayment(ctx, CreatePaymentInput{AmountDue: dec("100.00")})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	p, err = svc.RecordPayment(ctx, p.ID, dec("150.00"))
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if !p.Balance().Equal(dec("-50.00")) {
		t.Fatalf("overpayment must keep a negative balance, got %s", p.Balance())
	}
	if p.IsPartial {
		t.Fatalf("overpaid payment is not partial")
	}
}

func TestSetStatusIndependentOfAmounts(t *testing.T) {
	svc := NewService(NewRepo(setupTestDB(t)))
	ctx := context.Background()

	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p, err := svc.CreatePayment(ctx, CreatePaymentInput{AmountDue: dec("500.00"), DueDate: &due})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	p, err = svc.SetStatus(ctx, p.ID, StatusPaid)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if p.Status != StatusPaid {
		t.Fatalf("expected paid, got %s", p.Status)
	}
	if !p.IsPartial {
		t.Fatalf("status change must not touch is_partial")
	}

	if _, err := svc.SetStatus(ctx, p.ID, Status("refunded")); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}
