package outbox

import (
	"context"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const backlogTimeout = 2 * time.Second

// NewBacklogGauge registers a gauge that reports the outbox length on every
// scrape. A failed LLEN shows up as NaN.
func NewBacklogGauge(reg prometheus.Registerer, o *RedisOutbox) prometheus.GaugeFunc {
	return promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "projectshelf_outbox_backlog",
		Help: "Number of queued emails not yet picked up by the mail worker",
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), backlogTimeout)
		defer cancel()

		n, err := o.Len(ctx)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	})
}
