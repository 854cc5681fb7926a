// internal/chat/metrics.go

package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_active_connections",
		Help: "Number of open websocket connections",
	})

	roomBindings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_room_bindings_total",
		Help: "Total successful join:room commands",
	})

	roomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_rooms_created_total",
		Help: "Total chat rooms created",
	})

	messagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_sent_total",
		Help: "Total messages persisted",
	})

	messagesEdited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_edited_total",
		Help: "Total message edits",
	})

	messagesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_deleted_total",
		Help: "Total messages soft-deleted",
	})

	receiptsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_read_receipts_total",
		Help: "Total read receipts recorded",
	})

	broadcastEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_broadcast_events_total",
		Help: "Events fanned out to room members, by event type",
	}, []string{"type"})

	slowEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_slow_evictions_total",
		Help: "Connections dropped because their send buffer was full",
	})

	wsErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_ws_errors_total",
		Help: "Errors reported to websocket clients, by error code",
	}, []string{"code"})
)
