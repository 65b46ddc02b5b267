package network

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"
)

const (
	controlFrame byte = 0
	dataFrame    byte = 1

	maxFrameSize = 1 << 30
)

var (
	ErrClosed      = errors.New("connection closed")
	ErrJoinTimeout = errors.New("timed out waiting for peers")
)

// Connection is one process's link into the group. Frames written to the
// outgoing channel start with the destination id, frames read from the
// incoming channel start with the id of the sender.
type Connection interface {
	Connect(ip string, port int) (int, error)
	Close()
}

var _ Connection = new(connection)

type connection struct {
	myId     int
	myPort   int
	running  bool
	group    *sync.WaitGroup
	sendDone chan struct{}
	listener *net.TCPListener
	peers    []*peer
	peerLock *sync.Mutex
	peerCond *sync.Cond
	in, out  chan []byte
	trace    *CSVStructLogger
	dialWait time.Duration
}

type peer struct {
	id   int
	ip   string
	port int
	conn *net.TCPConn
}

/*
	NewConnection gives a new connection, that will be listening on the given port.
	Port 0 picks a free port, see Port. The host will have ID 0 until it joins another host.
*/
func NewConnection(port int, bufferSize int) (*connection, <-chan []byte, chan<- []byte, error) {
	listener, err := net.Listen("tcp", fmt.Sprint(":", port))
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "listening on port %d", port)
	}
	c := new(connection)
	c.listener = listener.(*net.TCPListener)
	c.myPort = c.listener.Addr().(*net.TCPAddr).Port
	c.peerLock = new(sync.Mutex)
	c.peerCond = sync.NewCond(c.peerLock)
	c.peers = []*peer{{id: 0, ip: "127.0.0.1", port: c.myPort}}
	c.in, c.out = make(chan []byte, bufferSize), make(chan []byte, bufferSize)
	c.running = true
	c.group = new(sync.WaitGroup)
	c.sendDone = make(chan struct{})
	c.dialWait = 30 * time.Second
	c.group.Add(1)
	go c.listen()
	go c.sendLoop()
	return c, c.in, c.out, nil
}

// Port is the port the connection accepts peers on.
func (c *connection) Port() int {
	return c.myPort
}

// SetTrace makes the connection log every frame it sends.
func (c *connection) SetTrace(l *CSVStructLogger) {
	c.trace = l
}

// SetDialTimeout bounds how long Connect keeps retrying an unreachable host.
func (c *connection) SetDialTimeout(d time.Duration) {
	c.dialWait = d
}

/*
	This function connects the host to another host on the given ip and port.
	When connected, this host will receive a new ID from the host, and will connect
	to every peer the host already knows about.
*/
func (c *connection) Connect(ip string, port int) (int, error) {
	conn, err := dialRetry(fmt.Sprint(ip, ":", port), c.dialWait)
	if err != nil {
		return 0, err
	}
	if err := write(conn, []byte{controlFrame, 0, byte(c.myPort >> 8), byte(c.myPort)}); err != nil {
		return 0, errors.Wrap(err, "sending join request")
	}
	msg, err := read(conn)
	if err != nil {
		return 0, errors.Wrap(err, "reading join response")
	}
	if len(msg) < 2 {
		return 0, errors.Errorf("malformed join response of %d bytes", len(msg))
	}

	c.peerLock.Lock()
	c.myId = int(msg[0])
	c.peers = make([]*peer, 0, c.myId+1)
	c.addPeer(c.myId, nil, c.myPort)
	host := c.addPeer(int(msg[1]), conn, port)
	c.peerLock.Unlock()
	c.startReceiving(host)

	j := 2
	for j < len(msg) {
		id := int(msg[j])
		j++
		peerIp, peerPort, k := addrFromBytes(msg[j:])
		j += k
		newConn, err := dialRetry(fmt.Sprint(peerIp, ":", peerPort), c.dialWait)
		if err != nil {
			return 0, err
		}
		if err := write(newConn, []byte{controlFrame, byte(c.myId), byte(c.myPort >> 8), byte(c.myPort)}); err != nil {
			return 0, errors.Wrapf(err, "greeting peer %d", id)
		}
		c.peerLock.Lock()
		p := c.addPeer(id, newConn, peerPort)
		c.peerLock.Unlock()
		c.startReceiving(p)
	}
	logger.Debugf("joined %s:%d as %d", ip, port, c.myId)
	return c.myId, nil
}

// WaitForPeers blocks until n peers besides this host are connected.
func (c *connection) WaitForPeers(n int, timeout time.Duration) error {
	expired := false
	timer := time.AfterFunc(timeout, func() {
		c.peerLock.Lock()
		expired = true
		c.peerLock.Unlock()
		c.peerCond.Broadcast()
	})
	defer timer.Stop()

	c.peerLock.Lock()
	defer c.peerLock.Unlock()
	for c.connectedPeers() < n {
		if expired {
			return errors.Wrapf(ErrJoinTimeout, "%d of %d peers joined", c.connectedPeers(), n)
		}
		if !c.running {
			return ErrClosed
		}
		c.peerCond.Wait()
	}
	return nil
}

func (c *connection) Close() {
	c.peerLock.Lock()
	c.running = false
	c.peerLock.Unlock()
	c.peerCond.Broadcast()

	close(c.out)
	<-c.sendDone

	c.peerLock.Lock()
	c.listener.Close()
	for _, p := range c.peers {
		if p != nil && p.conn != nil {
			p.conn.Close()
		}
	}
	c.peerLock.Unlock()

	c.group.Wait()
	close(c.in)
}

/*
	This is a locally used method that sends messages read from the outgoing channel.
	A message for a peer that has not connected yet waits until it does.
*/
func (c *connection) sendLoop() {
	defer close(c.sendDone)
	for msg := range c.out {
		id := int(msg[0])
		if id == c.myId {
			c.in <- msg
			continue
		}
		p := c.waitForPeer(id)
		if p == nil {
			logger.Warningf("dropping %d byte frame for unknown peer %d", len(msg), id)
			continue
		}
		if c.trace != nil && len(msg) > 1 {
			c.trace.Log(FrameMessage{From: byte(c.myId), To: byte(id), Kind: msg[1], Size: len(msg) - 1})
		}
		msg[0] = dataFrame
		if err := write(p.conn, msg); err != nil {
			logger.Errorf("sending to peer %d: %v", id, err)
		}
	}
}

func (c *connection) waitForPeer(id int) *peer {
	c.peerLock.Lock()
	defer c.peerLock.Unlock()
	for id >= len(c.peers) || c.peers[id] == nil || c.peers[id].conn == nil {
		if !c.running {
			return nil
		}
		c.peerCond.Wait()
	}
	return c.peers[id]
}

func (c *connection) startReceiving(p *peer) {
	c.group.Add(1)
	go c.receive(p)
}

/*
	This is a locally used method that reads messages from a certain connection, and puts them in the
	incoming channel with the first byte replaced by the id of the peer.
*/
func (c *connection) receive(p *peer) {
	defer c.group.Done()
	for {
		b, err := read(p.conn)
		if err != nil {
			if err != io.EOF && c.isRunning() {
				logger.Debugf("peer %d stopped: %v", p.id, err)
			}
			return
		}
		if len(b) == 0 || b[0] != dataFrame {
			continue
		}
		msg := append([]byte{byte(p.id)}, b[1:]...)
		c.in <- msg
	}
}

func (c *connection) isRunning() bool {
	c.peerLock.Lock()
	defer c.peerLock.Unlock()
	return c.running
}

/*
	Local functions that just runs a loop listening for incoming connections and running addHost
	on all new connections.
*/
func (c *connection) listen() {
	defer c.group.Done()
	for {
		conn, err := c.listener.AcceptTCP()
		if err != nil {
			if c.isRunning() {
				logger.Errorf("accepting peers on port %d: %v", c.myPort, err)
			}
			return
		}
		c.addHost(conn)
	}
}

/*
	If the host sends a message with ID = 0, it is a new host joining the network, so we give it
	an id and send it our list of peers.
	If the ID is different from 0, the host has already joined the network, and should just be added to our list of peers.
*/
func (c *connection) addHost(conn *net.TCPConn) {
	msg, err := read(conn)
	if err != nil || len(msg) < 4 || msg[0] != controlFrame {
		logger.Warningf("rejecting connection from %s", conn.RemoteAddr())
		conn.Close()
		return
	}
	id := int(msg[1])
	port := int(msg[2])<<8 | int(msg[3])

	c.peerLock.Lock()
	var reply []byte
	if id == 0 {
		id = len(c.peers)
		var buf bytes.Buffer
		buf.Write([]byte{byte(id), byte(c.myId)})
		for i, p := range c.peers {
			if i != c.myId && p != nil {
				buf.WriteByte(byte(i))
				buf.Write(addrToBytes(p.ip, p.port))
			}
		}
		reply = buf.Bytes()
	}
	p := c.addPeer(id, conn, port)
	c.peerLock.Unlock()

	if reply != nil {
		if err := write(conn, reply); err != nil {
			logger.Errorf("answering join request of peer %d: %v", id, err)
		}
	}
	c.startReceiving(p)
}

// addPeer must be called with peerLock held.
func (c *connection) addPeer(id int, conn *net.TCPConn, port int) *peer {
	if len(c.peers) <= id {
		c.peers = append(c.peers, make([]*peer, (id-len(c.peers))+1)...)
	}
	ip := "127.0.0.1"
	if conn != nil {
		if host, _, err := net.SplitHostPort(conn.RemoteAddr().String()); err == nil {
			ip = host
		}
	}
	p := &peer{id, ip, port, conn}
	c.peers[id] = p
	c.peerCond.Broadcast()
	return p
}

func (c *connection) connectedPeers() int {
	n := 0
	for _, p := range c.peers {
		if p != nil && p.conn != nil {
			n++
		}
	}
	return n
}

func dialRetry(addr string, wait time.Duration) (*net.TCPConn, error) {
	deadline := time.Now().Add(wait)
	for {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			return conn.(*net.TCPConn), nil
		}
		if time.Now().After(deadline) {
			return nil, errors.Wrapf(err, "dialing %s", addr)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func write(conn net.Conn, data []byte) error {
	l := make([]byte, 8)
	binary.PutVarint(l, int64(len(data)))
	_, err := conn.Write(append(l, data...))
	return err
}

func read(conn net.Conn) ([]byte, error) {
	length := make([]byte, 8)
	if _, err := io.ReadFull(conn, length); err != nil {
		return nil, err
	}
	l, n := binary.Varint(length)
	if n <= 0 || l < 0 || l > maxFrameSize {
		return nil, errors.Errorf("invalid frame length %d", l)
	}
	msg := make([]byte, l)
	if _, err := io.ReadFull(conn, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func addrFromBytes(b []byte) (string, int, int) {
	s := make([]string, 4)
	for i := 0; i < 4; i++ {
		s[i] = strconv.Itoa(int(b[i]))
	}
	ip := strings.Join(s, ".")
	port, i := binary.Varint(b[4:])
	return ip, int(port), i + 4
}

func addrToBytes(ip string, port int) []byte {
	ipArray := strings.Split(ip, ".")
	if len(ipArray) != 4 {
		ipArray = []string{"127", "0", "0", "1"}
	}
	ipInBytes := make([]byte, 4)
	for i := range ipArray {
		v, _ := strconv.Atoi(ipArray[i])
		ipInBytes[i] = byte(v)
	}
	buf := make([]byte, binary.MaxVarintLen64)
	i := binary.PutVarint(buf, int64(port))
	return append(ipInBytes, buf[:i]...)
}
