package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pilebones/go-udev/netlink"

	"cdrip/internal/logging"
)

// DefaultCooldown is how long events are ignored after a handler returns.
const DefaultCooldown = 10 * time.Second

// Handler is called for each accepted disc insertion.
type Handler func(ctx context.Context, device string) error

// Monitor listens for udev netlink events for one device.
type Monitor struct {
	device   string
	logger   *slog.Logger
	handler  Handler
	isPaused func() bool
	cooldown time.Duration
	now      func() time.Time

	mu       sync.Mutex
	conn     *netlink.UEventConn
	quit     chan struct{}
	running  bool
	lastDone time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithPause skips events while fn reports true.
func WithPause(fn func() bool) Option {
	return func(m *Monitor) {
		m.isPaused = fn
	}
}

// WithCooldown overrides DefaultCooldown. Zero disables it.
func WithCooldown(d time.Duration) Option {
	return func(m *Monitor) {
		if d >= 0 {
			m.cooldown = d
		}
	}
}

// New creates a monitor for device. It returns nil when device is empty.
func New(device string, logger *slog.Logger, handler Handler, opts ...Option) *Monitor {
	device = strings.TrimSpace(device)
	if device == "" {
		return nil
	}
	m := &Monitor{
		device:   device,
		logger:   logging.NewComponentLogger(logger, "netlink-monitor"),
		handler:  handler,
		cooldown: DefaultCooldown,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start connects to the kernel uevent socket and begins dispatching events.
func (m *Monitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return fmt.Errorf("connect netlink socket: %w", err)
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, conn, quit)

	m.logger.Info("netlink monitor started",
		logging.String(logging.FieldEventType, "netlink_monitor_started"),
		logging.String("device", m.device),
	)
	return nil
}

// Run starts the monitor and blocks until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	if m == nil {
		return fmt.Errorf("no drive configured")
	}
	if err := m.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	m.Stop()
	return nil
}

// Stop shuts down the netlink monitor.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}

	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}

	m.running = false

	m.logger.Info("netlink monitor stopped",
		logging.String(logging.FieldEventType, "netlink_monitor_stopped"),
	)
}

func (m *Monitor) monitorLoop(ctx context.Context, conn *netlink.UEventConn, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, buildMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(ctx, uevent)
		case err := <-errs:
			m.logger.Warn("netlink monitor error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "netlink_monitor_error"),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "disc detection may be affected"),
			)
		}
	}
}

// buildMatcher matches SUBSYSTEM=block, ID_CDROM=1, ID_CDROM_MEDIA=1, ACTION=change|add.
func buildMatcher() netlink.Matcher {
	action := "change|add"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM":      "block",
			"ID_CDROM":       "1",
			"ID_CDROM_MEDIA": "1",
		},
	})
	return rules
}

func (m *Monitor) handleEvent(ctx context.Context, uevent netlink.UEvent) {
	devname := extractDeviceName(uevent)
	if devname == "" {
		m.logger.Debug("ignoring event without device name",
			logging.String("action", string(uevent.Action)),
			logging.String("kobj", uevent.KObj),
		)
		return
	}

	if devname != m.device {
		m.logger.Debug("ignoring event for non-configured device",
			logging.String("device", devname),
			logging.String("configured_device", m.device),
		)
		return
	}

	if m.isPaused != nil && m.isPaused() {
		m.logger.Debug("disc detection paused, ignoring netlink event",
			logging.String("device", devname),
		)
		return
	}

	m.mu.Lock()
	lastDone := m.lastDone
	m.mu.Unlock()
	if m.cooldown > 0 && !lastDone.IsZero() && m.now().Sub(lastDone) < m.cooldown {
		m.logger.Debug("ignoring event during cooldown",
			logging.String("device", devname),
			logging.Duration("since_last", m.now().Sub(lastDone)),
		)
		return
	}

	m.logger.Info("disc media detected via netlink",
		logging.String(logging.FieldEventType, "netlink_disc_detected"),
		logging.String("device", devname),
		logging.String("action", string(uevent.Action)),
	)

	if m.handler == nil {
		return
	}

	err := m.handler(ctx, devname)

	m.mu.Lock()
	m.lastDone = m.now()
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("disc handler failed",
			logging.Error(err),
			logging.String("device", devname),
			logging.String(logging.FieldEventType, "netlink_handler_failed"),
			logging.String(logging.FieldErrorHint, "check the rip log for details"),
			logging.String(logging.FieldImpact, "disc not ripped"),
		)
	}
}

// extractDeviceName gets the device path from a uevent.
func extractDeviceName(uevent netlink.UEvent) string {
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		if !strings.HasPrefix(devname, "/") {
			devname = "/dev/" + devname
		}
		return devname
	}

	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		return ""
	}

	parts := strings.Split(devpath, "/")
	return "/dev/" + parts[len(parts)-1]
}
