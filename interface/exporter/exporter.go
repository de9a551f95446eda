package exporter

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"treasury/domain"
)

const (
	METRIC_ERROR_COUNT     = "error_count"
	METRIC_OPERATION_COUNT = "operation_count"
	METRIC_CUSTODIED       = "custodied_balance"
	METRIC_DEPLOYED        = "deployed_balance"
	METRIC_DRIFT           = "balance_drift"
)

var (
	errorCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "treasury",
		Subsystem: "engine",
		Name:      METRIC_ERROR_COUNT,
		Help:      "Counts the failed operations by kind of failure",
	}, []string{"operation", "kind"})

	operationCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "treasury",
		Subsystem: "engine",
		Name:      METRIC_OPERATION_COUNT,
		Help:      "Counts the committed operations",
	}, []string{"operation"})

	custodied = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "treasury",
		Subsystem: "ledger",
		Name:      METRIC_CUSTODIED,
		Help:      "Custodied balance per asset, in whole tokens",
	}, []string{"asset"})

	deployed = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "treasury",
		Subsystem: "ledger",
		Name:      METRIC_DEPLOYED,
		Help:      "Principal deployed into the lending pool per asset, in whole tokens",
	}, []string{"asset"})

	drift = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "treasury",
		Subsystem: "ledger",
		Name:      METRIC_DRIFT,
		Help:      "On-chain balance minus custodied balance per asset, in whole tokens",
	}, []string{"asset"})

	registerOnce sync.Once
)

// Init registers the metrics on the default registry. Observations made before Init
// are kept.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(errorCount, operationCount, custodied, deployed, drift)
	})
}

func ObserveOperation(kind domain.OperationKind, err error) {
	if err != nil {
		errorCount.WithLabelValues(string(kind), domain.ErrorKind(err)).Inc()
		return
	}
	operationCount.WithLabelValues(string(kind)).Inc()
}

func ObserveDrift(item domain.Drift) {
	label := item.Asset.String()
	custodied.WithLabelValues(label).Set(wholeTokens(item.Custodied.BigInt(), item.Asset.Decimals))
	deployed.WithLabelValues(label).Set(wholeTokens(item.Deployed.BigInt(), item.Asset.Decimals))
	drift.WithLabelValues(label).Set(wholeTokens(item.Delta.BigInt(), item.Asset.Decimals))
}

func IncErrorCount(operation string) {
	errorCount.WithLabelValues(operation, "internal").Inc()
}

func wholeTokens(value *big.Int, decimals int32) float64 {
	if value == nil {
		return 0
	}
	return decimal.NewFromBigInt(value, -decimals).InexactFloat64()
}
