package network

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"
)

// Link bundles a connection with its channels.
type Link struct {
	Conn Connection
	In   <-chan []byte
	Out  chan<- []byte
}

var _ Connection = new(localConnection)

// localConnection routes frames between goroutines of one process. It keeps
// the frame layout of the TCP connection so a host cannot tell them apart.
type localConnection struct {
	myId     int
	cluster  []*localConnection
	in, out  chan []byte
	lock     *sync.Mutex
	closed   bool
	sendDone chan struct{}
}

// NewLocalCluster connects n in-process hosts with ids 0 to n-1.
func NewLocalCluster(n int, bufferSize int) []Link {
	cluster := make([]*localConnection, n)
	for i := range cluster {
		cluster[i] = &localConnection{
			myId:     i,
			cluster:  cluster,
			in:       make(chan []byte, bufferSize),
			out:      make(chan []byte, bufferSize),
			lock:     new(sync.Mutex),
			sendDone: make(chan struct{}),
		}
	}
	links := make([]Link, n)
	for i, c := range cluster {
		go c.sendLoop()
		links[i] = Link{Conn: c, In: c.in, Out: c.out}
	}
	return links
}

// Connect only reports the id assigned when the cluster was built.
func (c *localConnection) Connect(ip string, port int) (int, error) {
	return c.myId, nil
}

func (c *localConnection) Close() {
	close(c.out)
	<-c.sendDone
	c.lock.Lock()
	c.closed = true
	close(c.in)
	c.lock.Unlock()
}

func (c *localConnection) sendLoop() {
	defer close(c.sendDone)
	for msg := range c.out {
		to := int(msg[0])
		if to < 0 || to >= len(c.cluster) {
			continue
		}
		frame := append([]byte{byte(c.myId)}, msg[1:]...)
		if err := c.cluster[to].deliver(frame); err != nil {
			logger.Debugf("dropping frame from %d: %v", c.myId, err)
		}
	}
}

func (c *localConnection) deliver(frame []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return errors.Wrapf(ErrClosed, "host %d", c.myId)
	}
	c.in <- frame
	return nil
}
