package gridsort

import (
	"DSB-project/matrix"
	"DSB-project/mpi-api"
)

type Phase int32

const (
	PhaseRow Phase = iota + 1
	PhaseColumn
	PhaseFinalRow
)

func (p Phase) String() string {
	switch p {
	case PhaseRow:
		return "row"
	case PhaseColumn:
		return "column"
	case PhaseFinalRow:
		return "final row"
	}
	return "unknown"
}

const (
	TagColumn = 0
	TagRow    = 1
	TagFlag   = 2
)

func (p Phase) tag() int {
	if p == PhaseColumn {
		return TagColumn
	}
	return TagRow
}

func (p Phase) layout(n, index int) matrix.Layout {
	if p == PhaseColumn {
		return matrix.ColumnLayout(n, index)
	}
	return matrix.RowLayout(n, index)
}

// ShardMessage carries one row or column together with the pass it belongs to.
type ShardMessage struct {
	Phase  int32
	Pass   int32
	Index  int32
	Values []int32
}

// FlagMessage tells workers whether another pass follows.
type FlagMessage struct {
	Pass   int32
	Sorted bool
	Stop   bool
}

type ShardTransport interface {
	SendShard(to int, msg *ShardMessage) error
	RecvShard(from int, phase Phase) (*ShardMessage, error)
	SendFlag(to int, flag FlagMessage) error
	RecvFlag(from int) (FlagMessage, error)
}

var _ ShardTransport = new(CommTransport)

// CommTransport moves shards over the messaging runtime, rows and columns
// under their own tags.
type CommTransport struct {
	comm mpi_api.CommInterface
}

func NewCommTransport(comm mpi_api.CommInterface) *CommTransport {
	return &CommTransport{comm: comm}
}

func (t *CommTransport) SendShard(to int, msg *ShardMessage) error {
	return t.comm.Send(to, Phase(msg.Phase).tag(), msg)
}

func (t *CommTransport) RecvShard(from int, phase Phase) (*ShardMessage, error) {
	msg := new(ShardMessage)
	if err := t.comm.Receive(from, phase.tag(), msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (t *CommTransport) SendFlag(to int, flag FlagMessage) error {
	return t.comm.Send(to, TagFlag, flag)
}

func (t *CommTransport) RecvFlag(from int) (FlagMessage, error) {
	var flag FlagMessage
	err := t.comm.Receive(from, TagFlag, &flag)
	return flag, err
}

// sendLayout gathers the shard described by the phase's layout and sends it.
func sendLayout(t ShardTransport, to int, phase Phase, pass, index int, m *matrix.Matrix) error {
	values, err := m.Gather(phase.layout(m.N(), index), nil)
	if err != nil {
		return err
	}
	return t.SendShard(to, &ShardMessage{
		Phase:  int32(phase),
		Pass:   int32(pass),
		Index:  int32(index),
		Values: values,
	})
}
