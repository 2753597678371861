package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/CarLogiLine/CarLogiLine/internal/client"
	"github.com/CarLogiLine/CarLogiLine/internal/invoice"
	"github.com/CarLogiLine/CarLogiLine/internal/payment"
	"github.com/shopspring/decimal"
)

type captureNotifier struct {
	mu      sync.Mutex
	sent    []string
	amounts map[string]decimal.Decimal
	onSend  func(c client.Client)
}

func (n *captureNotifier) Notify(ctx context.Context, c client.Client, outstanding decimal.Decimal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.amounts == nil {
		n.amounts = make(map[string]decimal.Decimal)
	}
	n.sent = append(n.sent, c.Name)
	n.amounts[c.Name] = outstanding
	if n.onSend != nil {
		n.onSend(c)
	}
	return nil
}

func TestRunOnceNotifiesOverdueClients(t *testing.T) {
	db := setupTestDB(t)
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	a := seedClient(t, db, "Alpha")
	seedInvoice(t, db, a.ID, invoice.StatusUnpaid, today.AddDate(0, 0, -3), "500.00")
	b := seedClient(t, db, "Bravo")
	seedCarPayment(t, db, b.ID, payment.StatusPending, today.AddDate(0, 0, -1), "300.00", "100.00")
	seedClient(t, db, "Charlie")

	n := &captureNotifier{}
	job := NewJob(NewSelector(db), n, nil)

	sent, err := job.RunOnce(context.Background(), today)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if sent != 2 {
		t.Fatalf("expected 2 reminders, got %d", sent)
	}
	if len(n.sent) != 2 || n.sent[0] != "Alpha" || n.sent[1] != "Bravo" {
		t.Fatalf("expected [Alpha Bravo], got %v", n.sent)
	}
	if !n.amounts["Alpha"].Equal(dec("500.00")) {
		t.Fatalf("expected Alpha outstanding 500.00, got %s", n.amounts["Alpha"])
	}
	if !n.amounts["Bravo"].Equal(dec("200.00")) {
		t.Fatalf("expected Bravo outstanding 200.00, got %s", n.amounts["Bravo"])
	}
}

func TestRunOnceSkipsClientClearedMidRun(t *testing.T) {
	db := setupTestDB(t)
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	a := seedClient(t, db, "Alpha")
	seedInvoice(t, db, a.ID, invoice.StatusUnpaid, today.AddDate(0, 0, -3), "500.00")
	b := seedClient(t, db, "Bravo")
	bravoInv := seedInvoice(t, db, b.ID, invoice.StatusUnpaid, today.AddDate(0, 0, -3), "700.00")

	// Alpha 的提醒发出时把 Bravo 的发票结清，模拟批处理窗口内清账
	n := &captureNotifier{}
	n.onSend = func(c client.Client) {
		if c.ID != a.ID {
			return
		}
		err := db.Model(&invoice.Invoice{}).
			Where("id = ?", bravoInv.ID).
			Update("status", invoice.StatusPaid).Error
		if err != nil {
			t.Errorf("settle bravo invoice: %v", err)
		}
	}
	job := NewJob(NewSelector(db), n, nil)

	sent, err := job.RunOnce(context.Background(), today)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if sent != 1 {
		t.Fatalf("expected only Alpha to be notified, sent=%d", sent)
	}
	if len(n.sent) != 1 || n.sent[0] != "Alpha" {
		t.Fatalf("expected [Alpha], got %v", n.sent)
	}
}

func TestNextRunAt(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, loc)

	next := nextRunAt(now, 9, 0)
	if !next.Equal(time.Date(2024, 6, 1, 9, 0, 0, 0, loc)) {
		t.Fatalf("expected same-day 09:00, got %v", next)
	}

	next = nextRunAt(time.Date(2024, 6, 1, 9, 30, 0, 0, loc), 9, 0)
	if !next.Equal(time.Date(2024, 6, 2, 9, 0, 0, 0, loc)) {
		t.Fatalf("expected next-day 09:00, got %v", next)
	}

	next = nextRunAt(time.Date(2024, 6, 1, 9, 0, 0, 0, loc), 9, 0)
	if !next.Equal(time.Date(2024, 6, 2, 9, 0, 0, 0, loc)) {
		t.Fatalf("expected rollover exactly at run time, got %v", next)
	}
}
