package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"campus-market/internal/model"

	"github.com/rs/zerolog"
)

// Delivery reports how a notice reached the seller.
type Delivery string

const (
	DeliveryDirect    Delivery = "direct"
	DeliveryRelayed   Delivery = "relayed"
	DeliveryBroadcast Delivery = "broadcast"
)

// Notifier pushes sale notices to sellers. When the seller has a registered
// session the notice goes to that session as model.EventNewSale; otherwise it
// is broadcast to everyone as model.EventSaleBroadcastPrefix + sellerID with
// the reduced model.SaleBroadcast payload.
type Notifier struct {
	hub      *Hub
	registry SessionRegistry
	bus      Bus // nil for single-instance deployments
	logger   zerolog.Logger
}

func NewNotifier(hub *Hub, registry SessionRegistry, bus Bus, logger zerolog.Logger) *Notifier {
	return &Notifier{
		hub:      hub,
		registry: registry,
		bus:      bus,
		logger:   logger.With().Str("component", "realtime-notifier").Logger(),
	}
}

// NotifySale delivers payload to sellerID.
func (n *Notifier) NotifySale(ctx context.Context, sellerID string, payload json.RawMessage) (Delivery, error) {
	direct := Frame{Event: model.EventNewSale, Data: payload}

	instanceID, ok, err := n.registry.Lookup(ctx, sellerID)
	if err != nil {
		return "", err
	}

	if ok {
		if instanceID == n.hub.InstanceID() {
			if n.hub.Deliver(sellerID, direct) {
				return DeliveryDirect, nil
			}
			// Stale entry left by a connection that died without cleanup.
			if err := n.registry.Unregister(ctx, sellerID, instanceID); err != nil {
				n.logger.Warn().Err(err).Str("seller_id", sellerID).Msg("failed to drop stale session")
			}
		} else if n.bus != nil {
			err := n.bus.Publish(ctx, Envelope{
				Origin: n.hub.InstanceID(),
				Target: instanceID,
				UserID: sellerID,
				Frame:  direct,
			})
			if err != nil {
				return "", err
			}
			return DeliveryRelayed, nil
		}
	}

	public, err := broadcastPayload(payload)
	if err != nil {
		return "", err
	}
	fallback := Frame{Event: model.EventSaleBroadcastPrefix + sellerID, Data: public}
	n.hub.Broadcast(fallback)
	if n.bus != nil {
		if err := n.bus.Publish(ctx, Envelope{Origin: n.hub.InstanceID(), Frame: fallback}); err != nil {
			return "", fmt.Errorf("failed to broadcast sale notice: %w", err)
		}
	}

	n.logger.Debug().Str("seller_id", sellerID).Msg("seller not connected, sale notice broadcast")
	return DeliveryBroadcast, nil
}

// broadcastPayload strips a model.SaleNotice down to model.SaleBroadcast.
func broadcastPayload(payload json.RawMessage) (json.RawMessage, error) {
	var notice model.SaleNotice
	if err := json.Unmarshal(payload, &notice); err != nil {
		return nil, fmt.Errorf("failed to decode sale notice: %w", err)
	}
	out, err := json.Marshal(notice.Broadcast())
	if err != nil {
		return nil, fmt.Errorf("failed to encode sale broadcast: %w", err)
	}
	return out, nil
}
