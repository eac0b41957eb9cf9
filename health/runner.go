package health

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zeptools/gw-litesql/svc"
)

// Runner is a service checking its monitors every Interval.
// Results go to Publisher when set and to OnResult when set.
type Runner struct {
	Ctx       context.Context    // Service Context
	cancel    context.CancelFunc // Service Context CancelFunc
	state     int                // internal service state
	done      chan error         // Shutdown Error Channel
	interval  time.Duration
	monitors  []*Monitor
	Publisher *Publisher
	OnResult  func([]Response)
}

// Ensure health.Runner implements svc.Service interface
var _ svc.Service = (*Runner)(nil)

func NewRunner(parentCtx context.Context, interval time.Duration, monitors ...*Monitor) *Runner {
	svcCtx, svcCancel := context.WithCancel(parentCtx)
	return &Runner{
		Ctx:      svcCtx,
		cancel:   svcCancel,
		state:    svc.StateREADY,
		done:     make(chan error, 1),
		interval: interval,
		monitors: monitors,
	}
}

func (r *Runner) Name() string {
	return "HealthRunner"
}

func (r *Runner) Start() error {
	if r.state == svc.StateRUNNING {
		return fmt.Errorf("already started")
	}
	if r.state != svc.StateREADY {
		return fmt.Errorf("cannot start. not ready")
	}
	if r.interval <= 0 {
		return fmt.Errorf("health check interval must be positive, got %v", r.interval)
	}
	r.state = svc.StateRUNNING
	log.Infof("[Health] runner started for %d monitors every %v", len(r.monitors), r.interval)
	go r.run()
	return nil
}

func (r *Runner) Stop() {
	if r.state != svc.StateRUNNING {
		log.Error("[Health] cannot stop. not running")
		return
	}
	r.cancel()
	r.state = svc.StateSTOPPED
	log.Info("[Health] runner stopped")
}

func (r *Runner) Done() <-chan error {
	return r.done
}

func (r *Runner) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		r.RunOnce(r.Ctx)
		select {
		case <-r.Ctx.Done():
			log.Info("[Health] stopping runner")
			r.done <- nil
			return
		case <-ticker.C:
		}
	}
}

// RunOnce checks every monitor once and hands the responses on.
func (r *Runner) RunOnce(ctx context.Context) []Response {
	defer func() {
		if p := recover(); p != nil {
			log.Errorf("[PANIC] recovered in health runner: %v", p)
		}
	}()
	checkCtx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()
	responses := CheckAll(checkCtx, r.monitors...)
	for _, res := range responses {
		if !res.Healthy {
			log.Warnf("[Health] %s unhealthy: %s", res.Name, res.Message)
		}
		if r.Publisher == nil {
			continue
		}
		if err := r.Publisher.Publish(ctx, res); err != nil {
			log.Warnf("[Health] failed to publish %s: %v", res.Name, err)
		}
	}
	if r.OnResult != nil {
		r.OnResult(responses)
	}
	return responses
}
