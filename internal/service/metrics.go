package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var invoicesGeneratedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "rentbook",
		Name:      "invoices_generated_total",
		Help:      "Total number of invoices generated and stored.",
	},
)
