package Benchmarks

import (
	"DSB-project/memory"
	"DSB-project/mpi-api"
	"DSB-project/mpi-api/mpi"
	"bytes"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestCPUMemParams_Validate(t *testing.T) {
	valid := CPUMemParams{Threads: 2, CPURuns: 10, MinSize: 10, MaxSize: 20, Sleep: time.Millisecond, MemRuns: 1}
	assert.NoError(t, valid.Validate())
	for _, p := range []CPUMemParams{
		{CPURuns: 10, MinSize: 10, MaxSize: 20, MemRuns: 1},
		{Threads: 2, MinSize: 10, MaxSize: 20, MemRuns: 1},
		{Threads: 2, CPURuns: 10, MinSize: 20, MaxSize: 20, MemRuns: 1},
		{Threads: 2, CPURuns: 10, MinSize: 10, MaxSize: 20},
	} {
		assert.Equal(t, ErrInvalid, errors.Cause(p.Validate()), "%+v", p)
	}
}

func TestCPUMemBenchmark(t *testing.T) {
	p := CPUMemParams{Threads: 3, CPURuns: 1000, MinSize: 100, MaxSize: 10000, Sleep: time.Millisecond, MemRuns: 3, PageSize: 512, Seed: 9}
	var out bytes.Buffer
	results := make([]*CPUMemResult, 2)
	err := mpi.RunLocal(2, func(comm mpi_api.CommInterface) error {
		res, err := CPUMemBenchmark(comm, p, &out)
		results[comm.GetId()] = res
		return err
	})
	require.NoError(t, err)
	require.Len(t, results[0].ThreadTimes, 2)
	for _, times := range results[0].ThreadTimes {
		assert.Len(t, times, 3)
	}
	assert.Len(t, results[0].MemTimes, 2)
	assert.Contains(t, out.String(), "== Memory test results")
	assert.Contains(t, out.String(), "Total number of threads used for CPU test:            6")
}

// flakyMemory loses one byte of every allocation it fills.
type flakyMemory struct {
	*memory.Vmem
}

func (m flakyMemory) Fill(offset, sizeInBytes int, val byte) error {
	if err := m.Vmem.Fill(offset, sizeInBytes, val); err != nil {
		return err
	}
	return m.Write(offset+sizeInBytes-1, val+1)
}

func TestMemTest(t *testing.T) {
	mem, err := memory.NewVmem(4096, 1024)
	require.NoError(t, err)
	defer mem.Close()

	corrupt, err := memTest(mem, 3000, 0)
	assert.NoError(t, err)
	assert.Empty(t, corrupt)
	assert.Equal(t, []memory.AddrPair{{Start: 0, End: 4095}}, mem.FreeMemObjects)

	corrupt, err = memTest(flakyMemory{mem}, 3000, 0)
	assert.NoError(t, err)
	assert.Equal(t, []int{2048}, corrupt)
}

func generate(t *testing.T, n int) string {
	dir := t.TempDir()
	require.NoError(t, GenerateFile(filepath.Join(dir, UnsortedFile), n, rand.New(rand.NewSource(int64(n)))))
	return dir
}

func TestGenerateFile(t *testing.T) {
	dir := generate(t, 500)
	data, err := os.ReadFile(filepath.Join(dir, UnsortedFile))
	require.NoError(t, err)
	assert.Len(t, data, 500)
	for _, c := range data {
		assert.True(t, c >= '0' && c <= '8', "unexpected character %q", c)
	}
	assert.Error(t, GenerateFile(filepath.Join(dir, "none.txt"), 0, rand.New(rand.NewSource(1))))
}

func TestFileIOBenchmark(t *testing.T) {
	dir := generate(t, 1200)
	var out bytes.Buffer
	results := make([]*FileIOResult, 3)
	err := mpi.RunLocal(3, func(comm mpi_api.CommInterface) error {
		res, err := FileIOBenchmark(comm, FileIOParams{Size: 1200, Dir: dir}, &out)
		results[comm.GetId()] = res
		return err
	})
	require.NoError(t, err)
	assert.True(t, results[0].Sorted)
	assert.Len(t, results[0].SortTimes, 3)
	assert.Contains(t, out.String(), "The contents of the output file were sorted")
	_, err = os.Stat(filepath.Join(dir, SortedFile))
	assert.True(t, os.IsNotExist(err))
}

func TestFileIOParams_Validate(t *testing.T) {
	assert.Equal(t, ErrNotDivisible, errors.Cause(FileIOParams{Size: 10}.Validate(3)))
	assert.Equal(t, ErrInvalid, errors.Cause(FileIOParams{Size: 0}.Validate(1)))
	assert.NoError(t, FileIOParams{Size: 24}.Validate(8))
}

func TestFileIOBenchmark_missingInput(t *testing.T) {
	err := mpi.RunLocal(1, func(comm mpi_api.CommInterface) error {
		_, err := FileIOBenchmark(comm, FileIOParams{Size: 10, Dir: t.TempDir()}, &bytes.Buffer{})
		return err
	})
	assert.Error(t, err)
}

func TestBlockIOBenchmark(t *testing.T) {
	dir := generate(t, 200)
	p := BlockIOParams{MinSize: 10, MaxSize: 50, Blocks: 3, Runs: 2, Seed: 4, Dir: dir}
	var out bytes.Buffer
	results := make([]*BlockIOResult, 2)
	err := mpi.RunLocal(2, func(comm mpi_api.CommInterface) error {
		res, err := BlockIOBenchmark(comm, p, &out)
		results[comm.GetId()] = res
		return err
	})
	require.NoError(t, err)
	require.Len(t, results[0].BlockSizes, 2)
	for rank := range results[0].BlockSizes {
		assert.Len(t, results[0].BlockSizes[rank], 6)
		assert.Len(t, results[0].WriteTimes[rank], 6)
		for _, size := range results[0].BlockSizes[rank] {
			assert.True(t, size >= 10 && size <= 50)
		}
	}
	_, err = os.Stat(filepath.Join(dir, BlocksFile))
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, out.String(), "Maximum block size:                          50")
}

func TestMMBenchmark(t *testing.T) {
	p := MMParams{ARows: 6, ACols: 4, BRows: 4, BCols: 5}
	var out bytes.Buffer
	results := make([]*MMResult, 3)
	err := mpi.RunLocal(3, func(comm mpi_api.CommInterface) error {
		res, err := MMBenchmark(comm, p, &out)
		results[comm.GetId()] = res
		return err
	})
	require.NoError(t, err)
	res := results[0]
	assert.True(t, res.Verified)
	var want mat.Dense
	want.Mul(res.A, res.B)
	assert.True(t, mat.Equal(&want, res.C))
	rows, cols := res.C.Dims()
	assert.Equal(t, 6, rows)
	assert.Equal(t, 5, cols)
	assert.Contains(t, out.String(), "Number of elements in matrix C:                  30")
}

func TestMMParams_Validate(t *testing.T) {
	assert.Equal(t, ErrShape, errors.Cause(MMParams{ARows: 4, ACols: 3, BRows: 2, BCols: 2}.Validate(2)))
	assert.Equal(t, ErrNotDivisible, errors.Cause(MMParams{ARows: 5, ACols: 3, BRows: 3, BCols: 2}.Validate(2)))
	assert.Equal(t, ErrInvalid, errors.Cause(MMParams{ARows: 4, ACols: 0, BRows: 3, BCols: 2}.Validate(2)))
}

func runPi(t *testing.T, procs int, p PiParams) float64 {
	var pi float64
	err := mpi.RunLocal(procs, func(comm mpi_api.CommInterface) error {
		res, err := PiBenchmark(comm, p, &bytes.Buffer{})
		if err == nil && comm.GetId() == 0 {
			pi = res.Pi
		}
		return err
	})
	require.NoError(t, err)
	return pi
}

func TestPiBenchmark(t *testing.T) {
	assert.InDelta(t, math.Pi, runPi(t, 3, PiParams{Iterations: 20, Method: BaileyBorweinPlouffe}), 1e-12)
	assert.InDelta(t, math.Pi, runPi(t, 4, PiParams{Iterations: 2000000, Method: GregoryLeibniz}), 1e-6)
	assert.InDelta(t, math.Pi, runPi(t, 1, PiParams{Iterations: 2000000, Method: GregoryLeibniz}), 1e-6)
	assert.Equal(t, ErrInvalid, errors.Cause(PiParams{Iterations: 10, Method: 3}.Validate()))
}

func TestPiTerms_splitAddsUp(t *testing.T) {
	whole := piTerms(GregoryLeibniz, 0, 1001)
	parts := piTerms(GregoryLeibniz, 0, 333) + piTerms(GregoryLeibniz, 333, 666) + piTerms(GregoryLeibniz, 666, 1001)
	assert.InDelta(t, whole, parts, 1e-12)
}

func TestCountPrimes(t *testing.T) {
	assert.Equal(t, int64(0), countPrimes(1, 1))
	assert.Equal(t, int64(1), countPrimes(1, 2))
	assert.Equal(t, int64(4), countPrimes(1, 10))
	assert.Equal(t, int64(4), countPrimes(11, 20))
	assert.Equal(t, int64(0), countPrimes(24, 28))
}

func TestPrimeBenchmark(t *testing.T) {
	for _, procs := range []int{1, 3, 4, 7} {
		var total int64
		err := mpi.RunLocal(procs, func(comm mpi_api.CommInterface) error {
			res, err := PrimeBenchmark(comm, 100, &bytes.Buffer{})
			if err == nil && comm.GetId() == 0 {
				total = res.Total
			}
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, int64(25), total, "procs=%d", procs)
	}
}

func TestRingBenchmark(t *testing.T) {
	const procs, runs = 4, 6
	var out bytes.Buffer
	results := make([]*RingResult, procs)
	err := mpi.RunLocal(procs, func(comm mpi_api.CommInterface) error {
		res, err := RingBenchmark(comm, RingParams{Size: 1000, Runs: runs, Seed: 2}, &out)
		results[comm.GetId()] = res
		return err
	})
	require.NoError(t, err)
	assert.Len(t, results[0].Heads, runs)
	assert.Len(t, results[0].Times, runs)
	received := 0
	for _, res := range results {
		received += res.Received
	}
	assert.Equal(t, runs*(procs-1), received)
	for rank, res := range results {
		heads := 0
		for _, head := range results[0].Heads {
			if head == rank {
				heads++
			}
		}
		assert.Equal(t, runs-heads, res.Received, "rank %d", rank)
	}
	assert.Contains(t, out.String(), "Total number of runs: 6")
}
