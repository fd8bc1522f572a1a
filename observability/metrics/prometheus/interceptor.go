package prometheus

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"eserial"
)

type InterceptorBuilder struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string

	// Registerer defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// Build registers the collectors and returns an interceptor feeding them.
// It panics if the collectors are already registered, like
// prometheus.MustRegister.
func (b *InterceptorBuilder) Build() eserial.Interceptor {
	summaryVec := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: b.Namespace,
		Subsystem: b.Subsystem,
		Help:      b.Help,
		Name:      b.Name + "_duration_ms",
		Objectives: map[float64]float64{
			0.5:   0.01,
			0.75:  0.01,
			0.9:   0.01,
			0.99:  0.001,
			0.999: 0.0001,
		},
	}, []string{"op", "type"})

	errCntVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: b.Namespace,
		Subsystem: b.Subsystem,
		Name:      b.Name + "_error_cnt",
		Help:      b.Help,
	}, []string{"op", "type"})

	objCntVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: b.Namespace,
		Subsystem: b.Subsystem,
		Name:      b.Name + "_object_cnt",
		Help:      b.Help,
	}, []string{"op", "type"})

	// the root type of a decode is unknown while it runs
	activeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: b.Namespace,
		Subsystem: b.Subsystem,
		Name:      b.Name + "_active_cnt",
		Help:      b.Help,
	}, []string{"op"})

	reg := b.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(summaryVec, errCntVec, objCntVec, activeVec)

	return func(ctx context.Context, inv *eserial.Invocation, next eserial.Handler) (err error) {
		op := string(inv.Op)
		active := activeVec.WithLabelValues(op)
		active.Inc()
		startTime := time.Now()
		defer func() {
			active.Dec()
			typ := inv.TypeID
			if typ == "" {
				typ = "none"
			}
			if err != nil {
				errCntVec.WithLabelValues(op, typ).Inc()
			}
			objCntVec.WithLabelValues(op, typ).Add(float64(inv.Objects))
			summaryVec.WithLabelValues(op, typ).Observe(float64(time.Since(startTime).Milliseconds()))
		}()
		err = next(ctx, inv)
		return
	}
}
