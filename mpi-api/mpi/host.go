package mpi

import (
	"DSB-project/config"
	"DSB-project/mpi-api"
	"DSB-project/network"
	"DSB-project/utils"
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/davecgh/go-xdr/xdr2"
	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"
)

const (
	dataMessage     uint8 = 0
	barrierRequest  uint8 = 3
	barrierResponse uint8 = 4

	managerId  = 0
	bufferSize = 1000
)

var (
	ErrClosed = errors.New("messaging shut down")
	ErrRank   = errors.New("rank outside group")
)

// Envelope carries one tagged message. Body holds the xdr encoding of the
// value passed to Send.
type Envelope struct {
	Tag  int32
	Body []byte
}

type BarrierRequest struct {
	From uint8
}

type BarrierResponse struct {
	Procs uint8
}

type mailboxKey struct {
	from, tag int
}

type Host struct {
	myId, nrProcs int
	in            <-chan []byte
	out           chan<- []byte
	conn          network.Connection
	trace         *network.CSVStructLogger
	traceFile     *os.File

	lock      *sync.Mutex
	arrived   *sync.Cond
	mailboxes map[mailboxKey][][]byte
	receiving bool

	sendLock  *sync.RWMutex
	closed    bool
	closeOnce sync.Once

	channel chan bool
	barrier chan int
	done    chan struct{}
	group   *sync.WaitGroup
}

var _ mpi_api.CommInterface = new(Host)

func newHost(id, nrProcs int, link network.Link) *Host {
	h := new(Host)
	h.myId, h.nrProcs = id, nrProcs
	h.conn, h.in, h.out = link.Conn, link.In, link.Out
	h.lock = new(sync.Mutex)
	h.arrived = sync.NewCond(h.lock)
	h.mailboxes = make(map[mailboxKey][][]byte)
	h.receiving = true
	h.sendLock = new(sync.RWMutex)
	h.channel = make(chan bool, 1)
	h.barrier = make(chan int, 1)
	h.barrier <- 0
	h.done = make(chan struct{})
	h.group = new(sync.WaitGroup)
	h.group.Add(1)
	go h.handleIncoming()
	return h
}

/*
	Init joins the group described by the configuration. The manager waits for every
	other rank to join; the others connect to the manager and receive their rank.
	Every rank leaves Init through a barrier, so all ranks are reachable afterwards.
*/
func Init(cfg *config.Config) (*Host, error) {
	if cfg.Size == 1 {
		return NewLocalGroup(1)[0], nil
	}
	conn, in, out, err := network.NewConnection(cfg.Port, bufferSize)
	if err != nil {
		return nil, err
	}
	conn.SetDialTimeout(cfg.JoinWait())

	id := managerId
	if cfg.Manager {
		logger.Infof("waiting for %d ranks on port %d", cfg.Size-1, conn.Port())
		if err := conn.WaitForPeers(cfg.Size-1, cfg.JoinWait()); err != nil {
			conn.Close()
			return nil, err
		}
	} else {
		ip, port, err := utils.StringToIpAndPort(cfg.ManagerAddress)
		if err != nil {
			conn.Close()
			return nil, err
		}
		if id, err = conn.Connect(ip, port); err != nil {
			conn.Close()
			return nil, errors.WithMessage(err, "joining manager")
		}
		if id >= cfg.Size {
			conn.Close()
			return nil, errors.Wrapf(ErrRank, "got rank %d in a group of %d", id, cfg.Size)
		}
	}

	var trace *network.CSVStructLogger
	var traceFile *os.File
	if cfg.Trace != "" {
		if traceFile, err = os.Create(fmt.Sprintf("%s_%d.csv", cfg.Trace, id)); err != nil {
			conn.Close()
			return nil, errors.Wrap(err, "creating message trace")
		}
		trace = network.NewCSVStructLogger(traceFile, network.MessageEncoder{})
		conn.SetTrace(trace)
	}

	h := newHost(id, cfg.Size, network.Link{Conn: conn, In: in, Out: out})
	h.trace, h.traceFile = trace, traceFile
	if err := h.Barrier(); err != nil {
		h.close()
		return nil, err
	}
	logger.Infof("rank %d of %d ready", h.myId, h.nrProcs)
	return h, nil
}

// NewLocalGroup builds n hosts of one process, connected in memory.
func NewLocalGroup(n int) []*Host {
	links := network.NewLocalCluster(n, bufferSize)
	hosts := make([]*Host, n)
	for i := range hosts {
		hosts[i] = newHost(i, n, links[i])
	}
	return hosts
}

//----------------------------------------------------------------//
//              Functions defined by the interface                //
//----------------------------------------------------------------//

func (h *Host) GetId() int {
	return h.myId
}

func (h *Host) GetSize() int {
	return h.nrProcs
}

func (h *Host) Send(to, tag int, v interface{}) error {
	if to < 0 || to >= h.nrProcs {
		return errors.Wrapf(ErrRank, "sending to %d", to)
	}
	var body bytes.Buffer
	if _, err := xdr.Marshal(&body, v); err != nil {
		return errors.Wrapf(err, "encoding message for %d with tag %d", to, tag)
	}
	return h.sendMessage(to, dataMessage, Envelope{Tag: int32(tag), Body: body.Bytes()})
}

func (h *Host) Receive(from, tag int, v interface{}) error {
	if from < 0 || from >= h.nrProcs {
		return errors.Wrapf(ErrRank, "receiving from %d", from)
	}
	body, err := h.take(from, tag)
	if err != nil {
		return err
	}
	if _, err := xdr.Unmarshal(bytes.NewReader(body), v); err != nil {
		return errors.Wrapf(err, "decoding message from %d with tag %d", from, tag)
	}
	return nil
}

func (h *Host) Barrier() error {
	req := BarrierRequest{From: uint8(h.myId)}
	if h.myId != managerId {
		if err := h.sendMessage(managerId, barrierRequest, req); err != nil {
			return err
		}
	} else {
		h.handleBarrierRequest(req)
	}
	select {
	case <-h.channel:
		return nil
	case <-h.done:
		return ErrClosed
	}
}

func (h *Host) Shutdown() error {
	err := h.Barrier()
	h.close()
	return err
}

//----------------------------------------------------------------//
//                         Send messages                          //
//----------------------------------------------------------------//

func (h *Host) sendMessage(to int, msgType uint8, msg interface{}) error {
	var w bytes.Buffer
	w.Write([]byte{byte(to), msgType})
	if _, err := xdr.Marshal(&w, msg); err != nil {
		return errors.Wrap(err, "encoding frame")
	}
	h.sendLock.RLock()
	defer h.sendLock.RUnlock()
	if h.closed {
		return ErrClosed
	}
	h.out <- w.Bytes()
	return nil
}

func (h *Host) sendBarrierResponse(to int, procs int) {
	if err := h.sendMessage(to, barrierResponse, BarrierResponse{Procs: uint8(procs)}); err != nil {
		logger.Warningf("releasing rank %d from barrier: %v", to, err)
	}
}

func (h *Host) take(from, tag int) ([]byte, error) {
	key := mailboxKey{from, tag}
	h.lock.Lock()
	defer h.lock.Unlock()
	for len(h.mailboxes[key]) == 0 {
		if !h.receiving {
			return nil, ErrClosed
		}
		h.arrived.Wait()
	}
	queue := h.mailboxes[key]
	body := queue[0]
	queue[0] = nil
	if len(queue) == 1 {
		delete(h.mailboxes, key)
	} else {
		h.mailboxes[key] = queue[1:]
	}
	return body, nil
}

// Abort leaves the group without waiting for the other ranks.
func (h *Host) Abort() {
	h.close()
}

func (h *Host) close() {
	h.closeOnce.Do(func() {
		h.sendLock.Lock()
		h.closed = true
		h.sendLock.Unlock()
		h.conn.Close()
		h.group.Wait()
		if h.trace != nil {
			h.trace.Close()
			h.traceFile.Close()
		}
	})
}

//----------------------------------------------------------------//
//                  Handling incoming messages                    //
//----------------------------------------------------------------//

func (h *Host) handleIncoming() {
	defer h.group.Done()
	for msg := range h.in {
		if len(msg) < 2 {
			continue
		}
		from := int(msg[0])
		buf := bytes.NewReader(msg[2:])
		switch msg[1] {
		case dataMessage:
			var env Envelope
			if _, err := xdr.Unmarshal(buf, &env); err != nil {
				logger.Errorf("rank %d: dropping message from %d: %v", h.myId, from, err)
				continue
			}
			h.deliver(from, int(env.Tag), env.Body)
		case barrierRequest:
			var req BarrierRequest
			if _, err := xdr.Unmarshal(buf, &req); err != nil {
				logger.Errorf("rank %d: bad barrier request from %d: %v", h.myId, from, err)
				continue
			}
			h.handleBarrierRequest(req)
		case barrierResponse:
			var resp BarrierResponse
			if _, err := xdr.Unmarshal(buf, &resp); err != nil {
				logger.Errorf("rank %d: bad barrier response: %v", h.myId, err)
				continue
			}
			h.handleBarrierResponse(resp)
		default:
			logger.Warningf("rank %d: unknown message type %d from %d", h.myId, msg[1], from)
		}
	}
	h.lock.Lock()
	h.receiving = false
	h.lock.Unlock()
	h.arrived.Broadcast()
	close(h.done)
}

func (h *Host) deliver(from, tag int, body []byte) {
	key := mailboxKey{from, tag}
	h.lock.Lock()
	h.mailboxes[key] = append(h.mailboxes[key], body)
	h.lock.Unlock()
	h.arrived.Broadcast()
}

func (h *Host) handleBarrierRequest(req BarrierRequest) {
	n := <-h.barrier + 1
	if n < h.nrProcs {
		h.barrier <- n
		return
	}
	logger.Debugf("barrier complete, last request from %d", req.From)
	for i := 0; i < h.nrProcs; i++ {
		if i != h.myId {
			h.sendBarrierResponse(i, n)
		}
	}
	h.barrier <- 0
	h.channel <- true
}

func (h *Host) handleBarrierResponse(resp BarrierResponse) {
	h.channel <- true
}
