package network

import "fmt"

type Message interface {
	GetFrom() byte
	GetTo() byte
	GetType() string
	GetSize() int
}

// FrameMessage describes one frame handed to a connection.
type FrameMessage struct {
	From byte
	To   byte
	Kind byte
	Size int
}

func (m FrameMessage) GetFrom() byte {
	return m.From
}

func (m FrameMessage) GetTo() byte {
	return m.To
}

func (m FrameMessage) GetType() string {
	return fmt.Sprint(m.Kind)
}

func (m FrameMessage) GetSize() int {
	return m.Size
}
