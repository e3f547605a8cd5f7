// Package configs embeds the default report: the cache-miss, throughput
// and latency chart families of the message transfer benchmark.
package configs

import _ "embed"

//go:embed mt25078.yml
var Default []byte
