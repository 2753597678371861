package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/CarLogiLine/CarLogiLine/internal/client"
	"github.com/CarLogiLine/CarLogiLine/internal/common/logger"
	"github.com/CarLogiLine/CarLogiLine/internal/common/middleware"
	"github.com/shopspring/decimal"
)

// Notifier 提醒投递端口。邮件/短信等具体通道由外部实现。
type Notifier interface {
	Notify(ctx context.Context, c client.Client, outstanding decimal.Decimal) error
}

// LogNotifier 默认实现：只写日志，不对外投递。
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, c client.Client, outstanding decimal.Decimal) error {
	if n == nil || n.log == nil {
		return nil
	}
	n.log.WithFields(map[string]interface{}{
		"client":      c.Name,
		"email":       c.Email,
		"outstanding": outstanding.StringFixed(2),
	}).Info("payment reminder")
	return nil
}

// Job 每日付款提醒批处理。
//
// 批处理是幂等的：重复运行只会重复发送提醒，不改任何数据。
// 发送前对每个客户重查一次未清款项（见 OutstandingFor），
// 选出后已清账的客户会被跳过。
type Job struct {
	selector *Selector
	notifier Notifier
	breaker  *middleware.CircuitBreaker
	log      logger.Logger
}

func NewJob(selector *Selector, notifier Notifier, log logger.Logger) *Job {
	return &Job{
		selector: selector,
		notifier: notifier,
		breaker:  middleware.NewCircuitBreaker("reminder-notify", 5, 30*time.Second),
		log:      log,
	}
}

// RunOnce 跑一轮提醒。返回实际发送的提醒数。
func (j *Job) RunOnce(ctx context.Context, today time.Time) (int, error) {
	if j == nil || j.selector == nil || j.notifier == nil {
		return 0, fmt.Errorf("job not initialized")
	}

	clients, err := j.selector.SelectOverdueClients(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("select overdue clients: %w", err)
	}

	sent := 0
	for _, c := range clients {
		// 发送时重查，批处理窗口内清账的客户不再打扰
		ob, err := j.selector.OutstandingFor(ctx, c.ID, today)
		if err != nil {
			if j.log != nil {
				j.log.Warnf("recheck obligations failed client=%s: %v", c.ID, err)
			}
			continue
		}
		if ob.Cleared() {
			continue
		}

		cl := c
		amount := ob.Amount
		err = j.breaker.Call(ctx, func() error {
			return j.notifier.Notify(ctx, cl, amount)
		})
		if err != nil {
			if j.log != nil {
				j.log.Warnf("notify failed client=%s: %v", c.ID, err)
			}
			continue
		}
		sent++
	}

	if j.log != nil {
		j.log.Infof("reminder run finished: selected=%d sent=%d", len(clients), sent)
	}
	return sent, nil
}

// Run 按每天 hour:minute 的节奏循环运行，直到 ctx 取消。
func (j *Job) Run(ctx context.Context, hour, minute int) error {
	if j == nil {
		return fmt.Errorf("job not initialized")
	}
	for {
		next := nextRunAt(time.Now(), hour, minute)
		if j.log != nil {
			j.log.Infof("next reminder run at %s", next.Format(time.RFC3339))
		}
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case now := <-timer.C:
			if _, err := j.RunOnce(ctx, now); err != nil {
				if j.log != nil {
					j.log.Errorf("reminder run failed: %v", err)
				}
			}
		}
	}
}

// nextRunAt 计算下一个 hour:minute 时刻（已过则顺延到明天）。
func nextRunAt(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
