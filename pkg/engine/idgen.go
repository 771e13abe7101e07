package engine

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator issues decimal millisecond timestamps. a call within the same millisecond as the
// previous one gets the previous id plus one, so ids never repeat within a process.
type IDGenerator struct {
	last int64
	now  func() time.Time
	sync.Mutex
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

func (g *IDGenerator) Next() string {
	g.Lock()
	defer g.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}
