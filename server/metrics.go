package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/drblury/dishweaver/dish"
	"github.com/drblury/dishweaver/router"
)

func registerCollectors(reg *prometheus.Registry, store *dish.Store) error {
	dishes := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: router.MetricsNamespace,
			Name:      "dishes",
			Help:      "Number of dishes currently held in memory",
		},
		func() float64 { return float64(store.Len()) },
	)

	for _, c := range []prometheus.Collector{
		dishes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
