package services

import (
	"context"
	"time"

	"github.com/yeremiapane/cafe-venue/cache"
	"github.com/yeremiapane/cafe-venue/events"
	"github.com/yeremiapane/cafe-venue/hub"
	"github.com/yeremiapane/cafe-venue/models"
	"github.com/yeremiapane/cafe-venue/protocol"
	"github.com/yeremiapane/cafe-venue/repository"
)

const DefaultDeliveryJitter = 2 * time.Second

// Options configures NewVenue. Zero fields take the venue defaults.
type Options struct {
	Store     repository.Store
	Registry  *hub.Registry
	Seats     cache.SeatCache
	Menu      models.Menu
	Publisher events.Publisher

	Accrual          AccrualPolicy
	AccrualInterval  time.Duration
	DeliveryInterval time.Duration
	DeliveryJitter   time.Duration

	Clock  Clock
	Jitter Jitter
}

// Venue wires the managers and schedulers around one store, registry and seat cache.
type Venue struct {
	Sessions *SessionService
	Seats    *SeatService
	Orders   *OrderService
	Accrual  *BalanceScheduler
	Delivery *DeliveryScheduler
	Notifier *Notifier

	registry *hub.Registry
	cache    cache.SeatCache
	menu     models.Menu
}

func NewVenue(opts Options) *Venue {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Jitter == nil {
		opts.Jitter = RandomJitter
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.Menu == nil {
		opts.Menu = models.DefaultMenu()
	}
	if opts.Seats == nil {
		opts.Seats = cache.NewMemory(SeatMapLoader(opts.Store))
	}
	if opts.Accrual == (AccrualPolicy{}) {
		opts.Accrual = DefaultAccrualPolicy()
	}
	if opts.DeliveryJitter <= 0 {
		opts.DeliveryJitter = DefaultDeliveryJitter
	}
	if opts.AccrualInterval <= 0 {
		opts.AccrualInterval = time.Minute
	}
	if opts.DeliveryInterval <= 0 {
		opts.DeliveryInterval = time.Second
	}

	notifier := NewNotifier(opts.Registry, opts.Store, opts.Menu)
	seats := &SeatService{
		store:     opts.Store,
		seats:     opts.Seats,
		notifier:  notifier,
		clock:     opts.Clock,
		publisher: opts.Publisher,
	}
	orders := &OrderService{
		store:     opts.Store,
		menu:      opts.Menu,
		notifier:  notifier,
		clock:     opts.Clock,
		jitter:    opts.Jitter,
		maxJitter: opts.DeliveryJitter,
		publisher: opts.Publisher,
	}

	return &Venue{
		Sessions: &SessionService{
			store:    opts.Store,
			registry: opts.Registry,
			seats:    opts.Seats,
			notifier: notifier,
			seatSvc:  seats,
			orderSvc: orders,
		},
		Seats:  seats,
		Orders: orders,
		Accrual: &BalanceScheduler{
			monitor:   newMonitor("balance.accrual", opts.AccrualInterval),
			store:     opts.Store,
			seats:     opts.Seats,
			notifier:  notifier,
			policy:    opts.Accrual,
			clock:     opts.Clock,
			publisher: opts.Publisher,
		},
		Delivery: &DeliveryScheduler{
			monitor:   newMonitor("order.delivery", opts.DeliveryInterval),
			store:     opts.Store,
			notifier:  notifier,
			clock:     opts.Clock,
			publisher: opts.Publisher,
		},
		Notifier: notifier,
		registry: opts.Registry,
		cache:    opts.Seats,
		menu:     opts.Menu,
	}
}

// SeatMap returns the current seat snapshot, for read-only HTTP views.
func (v *Venue) SeatMap(ctx context.Context) (protocol.SeatMap, error) {
	return v.cache.Snapshot(ctx)
}

func (v *Venue) Menu() models.Menu { return v.menu }

// Connected counts clients bound to a live socket.
func (v *Venue) Connected() int { return v.registry.Count() }

// Start launches both schedulers onto loop.
func (v *Venue) Start(loop *Loop) {
	v.Accrual.Start(loop)
	v.Delivery.Start(loop)
}

func (v *Venue) Stop() {
	v.Accrual.Stop()
	v.Delivery.Stop()
}
