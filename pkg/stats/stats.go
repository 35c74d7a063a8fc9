package stats

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	BYTE = 1 << (10 * iota)
	KILOBYTE
	MEGABYTE
	GIGABYTE
)

var (
	// ListingsCreated counts the listings created since startup.
	ListingsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketd_listings_created_total",
		Help: "Total number of listings created.",
	})
	// ListingsRemoved counts the listings removed by their seller.
	ListingsRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketd_listings_removed_total",
		Help: "Total number of listings removed by their seller.",
	})
	// PriceChanges counts the listing price updates.
	PriceChanges = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketd_listing_price_changes_total",
		Help: "Total number of listing price changes.",
	})
	// SalesSettled counts the successfully settled purchases.
	SalesSettled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketd_sales_settled_total",
		Help: "Total number of settled sales.",
	})
	// SettledVolume accumulates the settled volume in settlement currency units.
	SettledVolume = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketd_settled_volume_total",
		Help: "Total settled volume in settlement currency units.",
	})
	// FailedSettlements counts the purchases rolled back because of a failing transfer.
	FailedSettlements = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketd_failed_settlements_total",
		Help: "Total number of settlements rolled back because a transfer failed.",
	})
)

func init() {
	prometheus.MustRegister(
		ListingsCreated, ListingsRemoved, PriceChanges,
		SalesSettled, SettledVolume, FailedSettlements,
	)
}

// EnableMemoryStatistics enables a go routine that periodically prints
// memory usage of the go process.
func EnableMemoryStatistics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PrintMemoryStatistics()
				PrintNumOfRoutines()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// PrintMemoryStatistics prints memory statistics using go runtime library.
func PrintMemoryStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.Infof(
		"memory stats: total allocated %.2fGB, heap allocated %.2fGB, "+
			"mallocs %v, frees %v",
		toGigabytes(memStats.TotalAlloc),
		toGigabytes(memStats.HeapAlloc),
		memStats.Mallocs,
		memStats.Frees,
	)
}

// PrintNumOfRoutines prints the current number of go routines.
func PrintNumOfRoutines() {
	log.Infof("num of go routines: %v", runtime.NumGoroutine())
}

func toGigabytes(bytes uint64) float64 {
	return float64(bytes) / GIGABYTE
}
