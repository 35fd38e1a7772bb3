/*Package metrics wraps datadog-go to record service metrics.
Naming convention of metric keys:
- Internal process time: *.time
- External latency: *.latency
- Error: *.err
- Size or count of things: *.size / *.count
*/
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/x-xyz/nftmarket/base/log"
)

// Ender is returned by BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpAvg(key string, val float64, tags ...string)
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)

	BumpTime(key string, tags ...string) Ender
}

type statsCli interface {
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
}

// Config of the process wide statsd client
type Config struct {
	Host    string
	Port    int
	EnvName string
	AppName string
	PodName string
}

var (
	mu         sync.RWMutex
	client     statsCli = &LogClient{}
	globalTags []string
)

// Init points every Service at the datadog agent. Without Init metrics are
// written to the debug log.
func Init(cfg Config) error {
	cli, err := newDatadogClient(cfg)
	if err != nil {
		return err
	}
	tags := []string{
		// the empty host tag drops host level tags
		"host:",
		"env:" + cfg.EnvName,
		"app:" + cfg.AppName,
	}
	if cfg.PodName != "" {
		tags = append(tags, "pod:"+cfg.PodName)
	}

	mu.Lock()
	defer mu.Unlock()
	client = cli
	globalTags = tags
	return nil
}

func current() (statsCli, []string) {
	mu.RLock()
	defer mu.RUnlock()
	return client, globalTags
}

// New returns a Service whose keys are prefixed with pkgName
func New(pkgName string) Service {
	return &Metrics{pkgName: pkgName}
}

type Metrics struct {
	pkgName string
	// cli overrides the process wide client, used by tests
	cli statsCli
}

func (mt *Metrics) target(tags []string) (statsCli, []string) {
	cli, base := current()
	if mt.cli != nil {
		cli = mt.cli
	}
	all := make([]string, 0, len(base)+len(tags)/2)
	all = append(all, base...)
	return cli, append(all, parseTag(tags)...)
}

func (mt *Metrics) key(key string) string {
	return mt.pkgName + "." + key
}

func (mt *Metrics) BumpAvg(key string, val float64, tags ...string) {
	cli, t := mt.target(tags)
	// datadog has no average type, gauge is the closest
	if err := cli.Gauge(mt.key(key), val, t, 1); err != nil {
		bumpFailed("BumpAvg", key, err)
	}
}

func (mt *Metrics) BumpSum(key string, val float64, tags ...string) {
	cli, t := mt.target(tags)
	if err := cli.Count(mt.key(key), int64(val), t, 1); err != nil {
		bumpFailed("BumpSum", key, err)
	}
}

func (mt *Metrics) BumpHistogram(key string, val float64, tags ...string) {
	cli, t := mt.target(tags)
	if err := cli.Histogram(mt.key(key), val, t, 1); err != nil {
		bumpFailed("BumpHistogram", key, err)
	}
}

// BumpTime starts a timer which is recorded when End is called:
//
//     defer s.BumpTime("my.function").End()
func (mt *Metrics) BumpTime(key string, tags ...string) Ender {
	cli, t := mt.target(tags)
	return &timeTracker{
		start: time.Now(),
		key:   mt.key(key),
		tags:  t,
		cli:   cli,
	}
}

type timeTracker struct {
	start time.Time
	key   string
	tags  []string
	cli   statsCli
}

func (t *timeTracker) End() {
	ms := float64(time.Since(t.start)) / float64(time.Millisecond)
	if err := t.cli.TimeInMilliseconds(t.key, ms, t.tags, 1); err != nil {
		bumpFailed("BumpTime", t.key, err)
	}
}

// parseTag turns key, value pairs into datadog "key:value" tags. A dangling
// key is dropped.
func parseTag(tags []string) []string {
	if len(tags) < 2 {
		return nil
	}
	arr := make([]string, 0, len(tags)/2)
	for i := 0; i+1 < len(tags); i += 2 {
		arr = append(arr, strings.Join([]string{tags[i], tags[i+1]}, ":"))
	}
	return arr
}

func bumpFailed(fn, key string, err error) {
	log.Log().WithFields(log.Fields{"err": err, "key": key, "func": fn}).Error("Bump fail")
}
