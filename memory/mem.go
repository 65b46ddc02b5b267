package memory

import (
	"DSB-project/utils"

	"github.com/Workiva/go-datastructures/bitarray"
	"github.com/pkg/errors"
)

var (
	ErrBounds       = errors.New("index out of bounds")
	ErrInsufficient = errors.New("insufficient space")
	ErrClosed       = errors.New("memory region closed")
)

type VirtualMemory interface {
	Read(addr int) (byte, error)
	Write(addr int, val byte) error
	GetPageAddr(addr int) int
	Malloc(sizeInBytes int) (int, error)
	Free(offset, sizeInBytes int) error
	Fill(offset, sizeInBytes int, val byte) error
	Verify(offset, sizeInBytes int, val byte) ([]int, error)
	Close() error
}

var _ VirtualMemory = new(Vmem)

// Vmem is a fixed block of memory handed out in first-fit allocations. On unix
// the block is an anonymous mapping, elsewhere a plain slice.
type Vmem struct {
	Stack          []byte
	PageByteSize   int
	FreeMemObjects []AddrPair
	release        func([]byte) error
}

// AddrPair is an inclusive range of free bytes.
type AddrPair struct {
	Start, End int
}

func NewVmem(memSize int, pageByteSize int) (*Vmem, error) {
	if memSize <= 0 || pageByteSize <= 0 {
		return nil, errors.Errorf("invalid region of %d bytes with %d byte pages", memSize, pageByteSize)
	}
	stack, release, err := allocate(memSize)
	if err != nil {
		return nil, err
	}
	m := new(Vmem)
	m.Stack = stack
	m.release = release
	m.PageByteSize = pageByteSize
	m.FreeMemObjects = []AddrPair{{0, memSize - 1}}
	return m, nil
}

func (m *Vmem) Close() error {
	if m.Stack == nil {
		return ErrClosed
	}
	stack := m.Stack
	m.Stack, m.FreeMemObjects = nil, nil
	if m.release != nil {
		return errors.Wrap(m.release(stack), "releasing memory region")
	}
	return nil
}

func (m *Vmem) Malloc(sizeInBytes int) (int, error) {
	if sizeInBytes <= 0 {
		return 0, errors.Wrapf(ErrBounds, "allocating %d bytes", sizeInBytes)
	}
	for i, pair := range m.FreeMemObjects {
		if pair.End-pair.Start+1 < sizeInBytes {
			continue
		}
		if pair.End-pair.Start+1 == sizeInBytes {
			m.FreeMemObjects = append(m.FreeMemObjects[:i], m.FreeMemObjects[i+1:]...)
		} else {
			m.FreeMemObjects[i] = AddrPair{pair.Start + sizeInBytes, pair.End}
		}
		return pair.Start, nil
	}
	return 0, errors.Wrapf(ErrInsufficient, "allocating %d bytes", sizeInBytes)
}

// Free returns a range to the free list, merging it with adjacent free ranges.
func (m *Vmem) Free(offset, sizeInBytes int) error {
	if err := m.check(offset, sizeInBytes); err != nil {
		return err
	}
	start := offset
	end := offset + sizeInBytes - 1
	var newlist []AddrPair
	inserted := false
	for _, pair := range m.FreeMemObjects {
		switch {
		case pair.End+1 < start:
			newlist = append(newlist, pair)
		case end+1 < pair.Start:
			if !inserted {
				newlist = append(newlist, AddrPair{start, end})
				inserted = true
			}
			newlist = append(newlist, pair)
		default:
			start = utils.Min(start, pair.Start)
			end = utils.Max(end, pair.End)
		}
	}
	if !inserted {
		newlist = append(newlist, AddrPair{start, end})
	}
	m.FreeMemObjects = newlist
	return nil
}

func (m *Vmem) Read(addr int) (byte, error) {
	if err := m.check(addr, 1); err != nil {
		return 0, err
	}
	return m.Stack[addr], nil
}

func (m *Vmem) Write(addr int, val byte) error {
	if err := m.check(addr, 1); err != nil {
		return err
	}
	m.Stack[addr] = val
	return nil
}

func (m *Vmem) GetPageAddr(addr int) int {
	return addr - addr%m.PageByteSize
}

func (m *Vmem) Fill(offset, sizeInBytes int, val byte) error {
	if err := m.check(offset, sizeInBytes); err != nil {
		return err
	}
	block := m.Stack[offset : offset+sizeInBytes]
	for i := range block {
		block[i] = val
	}
	return nil
}

// Verify returns the addresses of the pages in the range holding a byte other
// than val, in ascending order.
func (m *Vmem) Verify(offset, sizeInBytes int, val byte) ([]int, error) {
	if err := m.check(offset, sizeInBytes); err != nil {
		return nil, err
	}
	first := m.GetPageAddr(offset) / m.PageByteSize
	pages := m.GetPageAddr(offset+sizeInBytes-1)/m.PageByteSize - first + 1
	corrupt := bitarray.NewBitArray(uint64(pages))
	for addr := offset; addr < offset+sizeInBytes; addr++ {
		if m.Stack[addr] != val {
			if err := corrupt.SetBit(uint64(addr/m.PageByteSize - first)); err != nil {
				return nil, err
			}
		}
	}
	var res []int
	for p := 0; p < pages; p++ {
		if set, _ := corrupt.GetBit(uint64(p)); set {
			res = append(res, (first+p)*m.PageByteSize)
		}
	}
	return res, nil
}

func (m *Vmem) check(offset, sizeInBytes int) error {
	if m.Stack == nil {
		return ErrClosed
	}
	if offset < 0 || sizeInBytes <= 0 || offset+sizeInBytes > len(m.Stack) {
		return errors.Wrapf(ErrBounds, "%d bytes at %d in a region of %d", sizeInBytes, offset, len(m.Stack))
	}
	return nil
}
