package mpi_api

// CommInterface is the message passing runtime every program runs on.
// Ranks are 0 to GetSize()-1 and rank 0 is the manager of the group.
type CommInterface interface {
	GetId() int
	GetSize() int
	// Send encodes v and queues it for the given rank under tag.
	Send(to, tag int, v interface{}) error
	// Receive blocks until a message with the tag arrives from the given
	// rank and decodes it into v, which must be a pointer.
	Receive(from, tag int, v interface{}) error
	Barrier() error
	// Shutdown waits for every rank to reach it and closes the connection.
	Shutdown() error
}
