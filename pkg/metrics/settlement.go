package metrics

import "github.com/prometheus/client_golang/prometheus"

// SettlementMetrics counts listing resolutions and the funds they move.
type SettlementMetrics struct {
	resolutions *prometheus.CounterVec
	paidOut     prometheus.Counter
	refunded    prometheus.Counter
	refundCount prometheus.Counter
}

func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "escrow",
		Name:      "listing_resolutions_total",
		Help:      "Listings resolved, by terminal status and outcome.",
	}, []string{"status", "outcome"})
	paidOut := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "escrow",
		Name:      "seller_payout_units_total",
		Help:      "Base units released from custody to sellers.",
	})
	refunded := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "escrow",
		Name:      "bid_refund_units_total",
		Help:      "Base units returned from custody to bidders.",
	})
	refundCount := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "escrow",
		Name:      "bid_refunds_total",
		Help:      "Bids refunded on resolution.",
	})
	reg.MustRegister(resolutions, paidOut, refunded, refundCount)
	return &SettlementMetrics{
		resolutions: resolutions,
		paidOut:     paidOut,
		refunded:    refunded,
		refundCount: refundCount,
	}
}

// ObserveResolution records one committed resolution.
func (m *SettlementMetrics) ObserveResolution(status, outcome string, payout int64, refunds int, refundedUnits int64) {
	if m == nil || m.resolutions == nil {
		return
	}
	m.resolutions.WithLabelValues(normalizeLabel(status), normalizeLabel(outcome)).Inc()
	if payout > 0 {
		m.paidOut.Add(float64(payout))
	}
	if refunds > 0 {
		m.refundCount.Add(float64(refunds))
		m.refunded.Add(float64(refundedUnits))
	}
}
