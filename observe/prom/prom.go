// Package prom exposes a cogo scheduler's counters as Prometheus
// metrics. The collector reads the scheduler's atomic stats snapshot,
// so it is safe to register against a scheduler whose run loop is
// executing on another goroutine. The core runtime carries no
// metrics dependency; embedding programs that want scrapeable
// metrics register this collector.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/webriots/cogo"
)

// Collector implements prometheus.Collector over a scheduler's
// stats.
type Collector struct {
	sched *cogo.Scheduler

	spawned   *prometheus.Desc
	completed *prometheus.Desc
	failed    *prometheus.Desc
	resumes   *prometheus.Desc
	queued    *prometheus.Desc
	live      *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for the scheduler.
func NewCollector(sched *cogo.Scheduler) *Collector {
	return &Collector{
		sched: sched,
		spawned: prometheus.NewDesc(
			"cogo_tasks_spawned_total",
			"Total number of tasks spawned on the scheduler.",
			nil, nil,
		),
		completed: prometheus.NewDesc(
			"cogo_tasks_completed_total",
			"Total number of tasks that completed, including failed and canceled ones.",
			nil, nil,
		),
		failed: prometheus.NewDesc(
			"cogo_tasks_failed_total",
			"Total number of completed tasks that captured a failure.",
			nil, nil,
		),
		resumes: prometheus.NewDesc(
			"cogo_task_resumes_total",
			"Total number of task resumptions by the run loop.",
			nil, nil,
		),
		queued: prometheus.NewDesc(
			"cogo_runqueue_length",
			"Current number of continuations in the run queue.",
			nil, nil,
		),
		live: prometheus.NewDesc(
			"cogo_tasks_live",
			"Number of tasks spawned but not yet completed.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.spawned
	ch <- c.completed
	ch <- c.failed
	ch <- c.resumes
	ch <- c.queued
	ch <- c.live
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.sched.Stats()

	ch <- prometheus.MustNewConstMetric(c.spawned, prometheus.CounterValue, float64(st.Spawned))
	ch <- prometheus.MustNewConstMetric(c.completed, prometheus.CounterValue, float64(st.Completed))
	ch <- prometheus.MustNewConstMetric(c.failed, prometheus.CounterValue, float64(st.Failed))
	ch <- prometheus.MustNewConstMetric(c.resumes, prometheus.CounterValue, float64(st.Resumes))
	ch <- prometheus.MustNewConstMetric(c.queued, prometheus.GaugeValue, float64(st.Queued))
	ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(st.Live))
}
