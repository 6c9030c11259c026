package jobqueue

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/GiftScout/internal/pkg/crawler"
)

// Refresher is the part of the query engine the scheduler drives.
type Refresher interface {
	Refresh(progress crawler.ProgressFunc) (bool, error)
}

// Manager runs the periodic catalog refresh in the background.
type Manager struct {
	refresher     Refresher
	interval      time.Duration
	refreshTicker *time.Ticker
	stopCh        chan struct{}
	wg            sync.WaitGroup
	mu            sync.Mutex
	running       bool
}

// NewManager returns a manager that refreshes every interval. A non-positive
// interval disables the scheduler; queries still refresh on demand.
func NewManager(refresher Refresher, interval time.Duration) *Manager {
	return &Manager{
		refresher: refresher,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start launches the refresh worker. It is a no-op when already running or
// when scheduling is disabled.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	if m.interval <= 0 {
		log.Info("[JobQueue Manager] Scheduled refresh disabled")
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true

	m.refreshTicker = time.NewTicker(m.interval)
	m.wg.Add(1)
	go m.refreshWorker(m.refreshTicker, m.stopCh)

	log.Infof("[JobQueue Manager] Started refresh worker (interval: %s)", m.interval)
}

// Stop halts the worker and waits for a refresh in progress to return.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}

	log.Info("[JobQueue Manager] Stopping refresh worker...")
	if m.refreshTicker != nil {
		m.refreshTicker.Stop()
	}
	close(m.stopCh)
	m.running = false
	m.mu.Unlock()

	m.wg.Wait()
	log.Info("[JobQueue Manager] Stopped successfully")
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) refreshWorker(ticker *time.Ticker, stopCh <-chan struct{}) {
	defer m.wg.Done()

	// crawl right away instead of waiting a full interval after boot
	m.RunRefreshOnce()
	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Refresh worker stopping")
			return
		case <-ticker.C:
			m.RunRefreshOnce()
		}
	}
}

// RunRefreshOnce triggers a single refresh. The freshness gate decides whether
// a crawl actually happens.
func (m *Manager) RunRefreshOnce() {
	crawled, err := m.refresher.Refresh(nil)
	switch {
	case err != nil:
		log.Errorf("[JobQueue Manager] Scheduled refresh failed: %v", err)
	case crawled:
		log.Info("[JobQueue Manager] Scheduled refresh finished")
	default:
		log.Debug("[JobQueue Manager] Data still fresh, refresh skipped")
	}
}
