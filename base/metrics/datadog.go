package metrics

import (
	"fmt"

	"github.com/DataDog/datadog-go/statsd"
)

const (
	defaultPort = 8125
	// buffer this many metrics before a flush to the agent
	bufferMetrics = 10
)

func newDatadogClient(cfg Config) (statsCli, error) {
	if cfg.Host == "" {
		return &LogClient{}, nil
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, port)
	cli, err := statsd.NewBuffered(addr, bufferMetrics)
	if err != nil {
		return nil, fmt.Errorf("can't talk to datadog agent %s: %w", addr, err)
	}
	return cli, nil
}
