package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency  = metric.NewHistogram("1m1s")
	Evaluations      = metric.NewCounter("10s1s")
	DatasetMutations = metric.NewCounter("10s1s")
	MutationFailures = metric.NewCounter("10s1s")
	CallbacksFired   = metric.NewCounter("10s1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("thistle:DispatchLatency (µs)", DispatchLatency)
	expvar.Publish("thistle:Evaluations/s", Evaluations)
	expvar.Publish("thistle:DatasetMutations/s", DatasetMutations)
	expvar.Publish("thistle:MutationFailures/s", MutationFailures)
	expvar.Publish("thistle:CallbacksFired/s", CallbacksFired)
}
