package sim

import (
	"time"

	"github.com/relab/synod"
	"github.com/relab/synod/logging"
	"golang.org/x/time/rate"
)

// progress is an observer that periodically logs how far the run has come.
type progress struct {
	logger  logging.Logger
	limiter *rate.Limiter

	sent     int
	finished int
}

func newProgress(logger logging.Logger, interval time.Duration) *progress {
	return &progress{
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (p *progress) report(tick synod.Tick) {
	if p.limiter.Allow() {
		p.logger.Infof("tick %d: %d messages sent, %d processes finished", tick, p.sent, p.finished)
	}
}

func (p *progress) OnSend(tick synod.Tick, _, _ synod.ID, _ synod.Message) {
	p.sent++
	p.report(tick)
}

func (p *progress) OnDeliver(tick synod.Tick, _ synod.ID, _ synod.Delivery) {
	p.report(tick)
}

func (p *progress) OnTimeout(tick synod.Tick, _ synod.ID) {
	p.report(tick)
}

func (p *progress) OnFinished(tick synod.Tick, _ synod.ID, _ synod.Epoch, _ synod.Value) {
	p.finished++
	p.report(tick)
}
