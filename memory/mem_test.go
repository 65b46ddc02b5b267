package memory

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVmem(t *testing.T) *Vmem {
	mem, err := NewVmem(4096, 128)
	require.NoError(t, err)
	t.Cleanup(func() { mem.Close() })
	return mem
}

func TestOutOfBounds(t *testing.T) {
	mem := newVmem(t)
	_, err := mem.Read(4096)
	assert.Equal(t, ErrBounds, errors.Cause(err))
	assert.Equal(t, ErrBounds, errors.Cause(mem.Write(-1, 90)))
	assert.NoError(t, mem.Write(125, 90))
	v, err := mem.Read(125)
	assert.NoError(t, err)
	assert.Equal(t, byte(90), v)
}

func TestCorrectPageAddr(t *testing.T) {
	mem := newVmem(t)
	assert.Equal(t, 0, mem.GetPageAddr(57))
	assert.Equal(t, 1024, mem.GetPageAddr(1029))
	assert.Equal(t, 128*39, mem.GetPageAddr(5051))
}

func TestMalloc(t *testing.T) {
	mem := newVmem(t)
	addr1, err := mem.Malloc(512)
	assert.NoError(t, err)
	assert.Equal(t, 0, addr1)
	addr2, err := mem.Malloc(1024)
	assert.NoError(t, err)
	assert.Equal(t, 512, addr2)

	_, err = mem.Malloc(4096)
	assert.Equal(t, ErrInsufficient, errors.Cause(err))
	addr3, err := mem.Malloc(4096 - 1536)
	assert.NoError(t, err)
	assert.Equal(t, 1536, addr3)
	assert.Empty(t, mem.FreeMemObjects)
}

func TestFreeMemory(t *testing.T) {
	mem := newVmem(t)
	mem.Malloc(1024)
	assert.Equal(t, AddrPair{1024, 4095}, mem.FreeMemObjects[0])
	assert.NoError(t, mem.Free(0, 1024))
	assert.Equal(t, []AddrPair{{0, 4095}}, mem.FreeMemObjects)

	mem.Malloc(1024)
	addr1, _ := mem.Malloc(512)
	addr2, _ := mem.Malloc(1024)
	assert.Equal(t, 1024, addr1)
	assert.Equal(t, 1024+512, addr2)

	assert.NoError(t, mem.Free(addr1, 512))
	assert.Equal(t, AddrPair{1024, 1024 + 512 - 1}, mem.FreeMemObjects[0])
	assert.Equal(t, AddrPair{addr2 + 1024, 4095}, mem.FreeMemObjects[1])
	assert.NoError(t, mem.Free(addr2, 1024))
	assert.Equal(t, []AddrPair{{1024, 4095}}, mem.FreeMemObjects)
	mem.Malloc(600)
	assert.Equal(t, AddrPair{1024 + 600, 4095}, mem.FreeMemObjects[0])

	assert.NoError(t, mem.Free(0, 1024))
	assert.Equal(t, []AddrPair{{0, 1023}, {1624, 4095}}, mem.FreeMemObjects)
	assert.Error(t, mem.Free(4000, 200))
}

func TestVerify(t *testing.T) {
	mem := newVmem(t)
	addr, err := mem.Malloc(1000)
	require.NoError(t, err)
	require.NoError(t, mem.Fill(addr, 1000, 'B'))
	corrupt, err := mem.Verify(addr, 1000, 'B')
	assert.NoError(t, err)
	assert.Empty(t, corrupt)

	require.NoError(t, mem.Write(300, 'C'))
	require.NoError(t, mem.Write(999, 'C'))
	corrupt, err = mem.Verify(addr, 1000, 'B')
	assert.NoError(t, err)
	assert.Equal(t, []int{256, 896}, corrupt)

	corrupt, err = mem.Verify(260, 100, 'B')
	assert.NoError(t, err)
	assert.Equal(t, []int{256}, corrupt)
}

func TestClose(t *testing.T) {
	mem, err := NewVmem(8192, 4096)
	require.NoError(t, err)
	assert.NoError(t, mem.Close())
	assert.Equal(t, ErrClosed, mem.Close())
	assert.Equal(t, ErrClosed, mem.Write(0, 1))
	_, err = NewVmem(0, 128)
	assert.Error(t, err)
}
