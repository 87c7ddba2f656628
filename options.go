package influx

import "time"

// Options holds configuration properties for communicating with an InfluxDB server
type Options struct {
	// Precision to use in writes for timestamp. In unit of duration: time.Nanosecond, time.Microsecond, time.Millisecond, time.Second
	// Default time.Nanosecond
	Precision time.Duration
	// HTTPTimeout is the timeout of a single request, including reading the response body.
	// Default 10s
	HTTPTimeout time.Duration
	// Debug level to filter log messages. Each level means to log all categories below. 0 error, 1 - warning, 2 - info, 3 - debug
	Debug uint
	// Whether to use GZip compression in write requests. Default false
	UseGZip bool
}

// DefaultOptions returns Options object with default values
func DefaultOptions() *Options {
	return &Options{Precision: time.Nanosecond, HTTPTimeout: 10 * time.Second}
}
