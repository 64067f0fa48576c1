package refresh

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/agenda23/insightdash/internal/settings"
)

// Scheduler runs one timer per domain. Reconfigure tears every timer
// down and re-arms from scratch, so repeated calls with the same
// intervals are idempotent and a settings change takes effect
// immediately.
type Scheduler struct {
	orch *Orchestrator
	log  *slog.Logger

	mu       sync.Mutex
	timers   map[string]chan struct{}
	wg       sync.WaitGroup
	onTick   func(domain string)
	interval func(minutes int) time.Duration
}

func NewScheduler(orch *Orchestrator, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		orch:     orch,
		log:      log,
		timers:   make(map[string]chan struct{}),
		interval: settings.IntervalDuration,
	}
}

// OnTick registers a callback invoked after each completed timer-driven
// refresh. Set it before the first Reconfigure.
func (s *Scheduler) OnTick(fn func(domain string)) {
	s.onTick = fn
}

// Reconfigure rearms the timers. With enabled false, or an interval of
// zero or less for a domain, that domain gets no timer. Ticks fire the
// domain refresh and never wait on each other.
func (s *Scheduler) Reconfigure(intervals settings.UpdateIntervals, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelAllLocked()
	if !enabled {
		return
	}

	s.armLocked(DomainMarket, intervals.Market, func(ctx context.Context) { s.orch.RefreshMarket(ctx) })
	s.armLocked(DomainWeather, intervals.Weather, func(ctx context.Context) { s.orch.RefreshWeather(ctx) })
	s.armLocked(DomainNews, intervals.News, func(ctx context.Context) { s.orch.RefreshNews(ctx) })
}

func (s *Scheduler) armLocked(domain string, minutes int, fire func(context.Context)) {
	if minutes <= 0 {
		return
	}
	stop := make(chan struct{})
	s.timers[domain] = stop

	interval := s.interval(minutes)
	s.log.Debug("arming auto-update timer", "domain", domain, "interval", interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// Fire-and-forget: the fetch must not suspend the timer,
				// so a slow fetch overlaps the next tick instead of
				// delaying it.
				s.wg.Add(1)
				go func() {
					defer s.wg.Done()
					fire(context.Background())
					if s.onTick != nil {
						s.onTick(domain)
					}
				}()
			}
		}
	}()
}

func (s *Scheduler) cancelAllLocked() {
	for domain, stop := range s.timers {
		close(stop)
		delete(s.timers, domain)
	}
}

// Stop cancels all timers and waits for their goroutines, including any
// in-flight tick fetches, to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.cancelAllLocked()
	s.mu.Unlock()
	s.wg.Wait()
}

// Armed reports which domains currently have a timer, sorted.
func (s *Scheduler) Armed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	domains := make([]string, 0, len(s.timers))
	for domain := range s.timers {
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	return domains
}
