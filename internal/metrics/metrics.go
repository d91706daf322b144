package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "cofrn"

	heartbeatTransitions = "transitions_total"
	heartbeatFailed      = "failed"
	alarmNotifications   = "notifications_total"
	alarmEvents          = "events_total"

	// StateFailed and StateRecovered label heartbeat transitions.
	StateFailed    = "failed"
	StateRecovered = "recovered"

	// KindAlarm and KindRecovery label alarm notifications.
	KindAlarm    = "alarm"
	KindRecovery = "recovery"
)

var (
	heartbeatTransitionsCnt = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "heartbeat",
		Name:      heartbeatTransitions,
		Help:      "Total number of recorder failure state transitions",
	}, []string{"server", "state"})

	heartbeatFailedGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "heartbeat",
		Name:      heartbeatFailed,
		Help:      "Whether the recorder is currently marked as failed",
	}, []string{"server"})

	alarmNotificationsCnt = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "alarm",
		Name:      alarmNotifications,
		Help:      "Total number of alarm and recovery notifications sent",
	}, []string{"kind"})

	alarmEventsCnt = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "alarm",
		Name:      alarmEvents,
		Help:      "Total number of alarm state change events processed",
	}, []string{"state"})
)

func init() { //nolint:gochecknoinits // Collectors must be registered before the first scrape.
	prometheus.MustRegister(heartbeatTransitionsCnt)
	prometheus.MustRegister(heartbeatFailedGauge)
	prometheus.MustRegister(alarmNotificationsCnt)
	prometheus.MustRegister(alarmEventsCnt)
}

// NewHeartbeatTransition counts a recorder flipping to failed or recovered.
func NewHeartbeatTransition(server string, failed bool) {
	state := StateRecovered
	if failed {
		state = StateFailed
	}

	heartbeatTransitionsCnt.WithLabelValues(server, state).Inc()
}

// SetHeartbeatFailed records the current failure flag of a recorder.
func SetHeartbeatFailed(server string, failed bool) {
	value := 0.0
	if failed {
		value = 1
	}

	heartbeatFailedGauge.WithLabelValues(server).Set(value)
}

// NewAlarmNotification counts a sent alarm or recovery notice.
func NewAlarmNotification(kind string) {
	alarmNotificationsCnt.WithLabelValues(kind).Inc()
}

// NewAlarmEvent counts a processed ALARM or OK event.
func NewAlarmEvent(state string) {
	alarmEventsCnt.WithLabelValues(state).Inc()
}
