package handshake

import "github.com/prometheus/client_golang/prometheus"

const (
	resultSuccess     = "success"
	resultFailed      = "failed"
	resultUnknownUser = "unknown_user"
	resultError       = "error"
)

var (
	challengesIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ntlm",
			Subsystem: "handshake",
			Name:      "challenges_total",
			Help:      "The count of challenge messages sent",
		})

	handshakeResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ntlm",
			Subsystem: "handshake",
			Name:      "results_total",
			Help:      "The count of verified authenticate messages by result",
		}, []string{"result"})

	pendingHandshakes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ntlm",
			Subsystem: "handshake",
			Name:      "pending",
			Help:      "The amount of sessions waiting for an authenticate message",
		})
)

func init() {
	prometheus.MustRegister(challengesIssued)
	prometheus.MustRegister(handshakeResults)
	prometheus.MustRegister(pendingHandshakes)
}
