package middleware

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentbook",
			Name:      "rpc_requests_total",
			Help:      "Total number of RPC calls handled, by procedure and result code.",
		},
		[]string{"procedure", "code"},
	)
	rpcDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rentbook",
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"procedure"},
	)
)

// MetricsInterceptor records call counts and latency for every unary RPC.
func MetricsInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			rpcRequestsTotal.WithLabelValues(procedure, codeLabel(err)).Inc()
			rpcDurationSeconds.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}

func codeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Code().String()
	}
	return connect.CodeUnknown.String()
}
