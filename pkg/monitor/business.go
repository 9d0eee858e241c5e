package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 定义业务监控指标
type BusinessMetrics struct {
	AddressAllocatedTotal *prometheus.CounterVec
	DepositObservedTotal  *prometheus.CounterVec
	DepositCreditedTotal  *prometheus.CounterVec
	DepositCreditedAmount *prometheus.CounterVec
	ScanDuration          *prometheus.HistogramVec
	ScanErrorsTotal       *prometheus.CounterVec
	ScanCursorHeight      *prometheus.GaugeVec
}

// Global Metrics Instance
var Business *BusinessMetrics

// InitBusinessMetrics 初始化业务指标
func InitBusinessMetrics() {
	Business = &BusinessMetrics{
		AddressAllocatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custody_address_allocated_total",
			Help: "Total number of deposit addresses allocated",
		}, []string{"chain"}),
		DepositObservedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custody_deposit_observed_total",
			Help: "Total number of deposit transactions first observed",
		}, []string{"chain"}),
		DepositCreditedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custody_deposit_credited_total",
			Help: "Total number of deposits credited (pending -> confirmed)",
		}, []string{"chain"}),
		DepositCreditedAmount: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custody_deposit_credited_amount_total",
			Help: "Total credited amount in base units",
		}, []string{"chain", "asset"}),
		ScanDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "custody_scan_duration_seconds",
			Help:    "Duration of chain scan passes",
			Buckets: prometheus.DefBuckets,
		}, []string{"chain"}),
		ScanErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custody_scan_errors_total",
			Help: "Per-address scan errors (contained, not fatal)",
		}, []string{"chain"}),
		ScanCursorHeight: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "custody_scan_cursor_height",
			Help: "Last fully-scanned block height per chain",
		}, []string{"chain"}),
	}
}
