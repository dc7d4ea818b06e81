package session

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// deadSet tracks connections whose sends failed. It is written from writer goroutines and
// read from the tick loop.
type deadSet struct {
	mutex  sync.Mutex
	ids    map[string]struct{}
	grace  time.Duration
	logger *zap.Logger
}

func newDeadSet(grace time.Duration, logger *zap.Logger) *deadSet {
	return &deadSet{
		ids:    make(map[string]struct{}),
		grace:  grace,
		logger: logger,
	}
}

// mark records c as dead and closes it. Failures reported while c is already dead are ignored.
func (d *deadSet) mark(c *Connection, err error) {
	d.mutex.Lock()
	if _, ok := d.ids[c.id]; ok {
		d.mutex.Unlock()
		return
	}
	d.ids[c.id] = struct{}{}
	d.mutex.Unlock()

	sendFailures.Inc()
	c.logger.Warn("send failed, dropping connection", zap.Error(err))
	c.Close()
	time.AfterFunc(d.grace, func() {
		d.mutex.Lock()
		delete(d.ids, c.id)
		d.mutex.Unlock()
	})
}

func (d *deadSet) contains(id string) bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	_, ok := d.ids[id]
	return ok
}

func (d *deadSet) len() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return len(d.ids)
}
