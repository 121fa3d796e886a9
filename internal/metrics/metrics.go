package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the server's Prometheus collectors. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	sessionsOpen     prometheus.Gauge
	clientsJoined    prometheus.Gauge
	connectionsTotal *prometheus.CounterVec
	packetsSent      *prometheus.CounterVec
	recordsReceived  *prometheus.CounterVec
	recordsDropped   *prometheus.CounterVec
	icRateLimited    prometheus.Counter
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sessionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tsuserver_sessions_open",
			Help: "Number of open connections, joined or not.",
		}),
		clientsJoined: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tsuserver_clients_joined",
			Help: "Number of clients that picked a character.",
		}),
		connectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsuserver_connections_total",
			Help: "Total connections since server start.",
		}, []string{"transport"}),
		packetsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsuserver_packets_sent_total",
			Help: "Packets queued to clients by record type.",
		}, []string{"type"}),
		recordsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsuserver_records_received_total",
			Help: "Records decoded from clients by record type.",
		}, []string{"type"}),
		recordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsuserver_records_dropped_total",
			Help: "Inbound records dropped by reason.",
		}, []string{"reason"}),
		icRateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tsuserver_ic_rate_limited_total",
			Help: "IC messages dropped by the area flood gate.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.sessionsOpen,
		r.clientsJoined,
		r.connectionsTotal,
		r.packetsSent,
		r.recordsReceived,
		r.recordsDropped,
		r.icRateLimited,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mostly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) SessionOpened(transport string) {
	if r == nil {
		return
	}
	r.sessionsOpen.Inc()
	r.connectionsTotal.WithLabelValues(transport).Inc()
}

func (r *Recorder) SessionClosed() {
	if r == nil {
		return
	}
	r.sessionsOpen.Dec()
}

func (r *Recorder) ClientJoined() {
	if r == nil {
		return
	}
	r.clientsJoined.Inc()
}

func (r *Recorder) ClientLeft() {
	if r == nil {
		return
	}
	r.clientsJoined.Dec()
}

func (r *Recorder) PacketSent(typ string) {
	if r == nil {
		return
	}
	r.packetsSent.WithLabelValues(typ).Inc()
}

func (r *Recorder) RecordReceived(typ string) {
	if r == nil {
		return
	}
	r.recordsReceived.WithLabelValues(typ).Inc()
}

func (r *Recorder) RecordDropped(reason string) {
	if r == nil {
		return
	}
	r.recordsDropped.WithLabelValues(reason).Inc()
}

func (r *Recorder) ICRateLimited() {
	if r == nil {
		return
	}
	r.icRateLimited.Inc()
}
