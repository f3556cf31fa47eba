package carriers

import (
	"context"
	"time"
)

const (
	opCreate = "create_shipment"
	opTrack  = "track_shipment"
	opCancel = "cancel_shipment"
	opQuote  = "shipping_cost"
)

type carrierMetrics interface {
	Observe(carrier, operation string, success bool, elapsed time.Duration)
}

// Manager resolves a carrier by name and delegates to it. Unknown names
// produce a "service not available" result.
type Manager struct {
	registry *Registry
	metrics  carrierMetrics
}

// NewManager builds a manager over registry. metrics may be nil.
func NewManager(registry *Registry, metrics carrierMetrics) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Manager{registry: registry, metrics: metrics}
}

func (m *Manager) Registry() *Registry {
	return m.registry
}

func (m *Manager) CreateShipmentVia(ctx context.Context, name string, req ShipmentRequest) ShipmentResult {
	adapter, ok := m.registry.Resolve(name)
	if !ok {
		return ShipmentResult{Result: unavailable(name)}
	}
	start := time.Now()
	res := adapter.CreateShipment(ctx, req.WithDefaults())
	m.observe(name, opCreate, res.Success, start)
	res.ServiceName = normalizeName(name)
	return res
}

func (m *Manager) TrackVia(ctx context.Context, name, trackingID string) TrackingResult {
	adapter, ok := m.registry.Resolve(name)
	if !ok {
		return TrackingResult{Result: unavailable(name), TrackingNumber: trackingID}
	}
	start := time.Now()
	res := adapter.TrackShipment(ctx, trackingID)
	m.observe(name, opTrack, res.Success, start)
	res.ServiceName = normalizeName(name)
	if res.TrackingNumber == "" {
		res.TrackingNumber = trackingID
	}
	return res
}

func (m *Manager) CancelVia(ctx context.Context, name, trackingID string) Result {
	adapter, ok := m.registry.Resolve(name)
	if !ok {
		return unavailable(name)
	}
	start := time.Now()
	res := adapter.CancelShipment(ctx, trackingID)
	m.observe(name, opCancel, res.Success, start)
	res.ServiceName = normalizeName(name)
	return res
}

func (m *Manager) QuoteVia(ctx context.Context, name string, req QuoteRequest) CostResult {
	adapter, ok := m.registry.Resolve(name)
	if !ok {
		return CostResult{Result: unavailable(name)}
	}
	start := time.Now()
	res := adapter.GetShippingCost(ctx, req.WithDefaults())
	m.observe(name, opQuote, res.Success, start)
	res.ServiceName = normalizeName(name)
	return res
}

func (m *Manager) observe(name, op string, success bool, start time.Time) {
	if m.metrics == nil {
		return
	}
	m.metrics.Observe(normalizeName(name), op, success, time.Since(start))
}

func unavailable(name string) Result {
	return Result{
		Success:     false,
		Message:     MessageServiceNotAvailable,
		ServiceName: name,
	}
}
