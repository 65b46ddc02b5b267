package Benchmarks

import (
	"DSB-project/mpi-api"
	"DSB-project/mpi-api/mpi"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeArrays(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, mergeArrays([]int{1, 3, 5}, []int{2, 4, 6}))
	assert.Equal(t, []byte("0012"), mergeArrays([]byte("01"), []byte("02")))
	assert.Equal(t, []int{7}, mergeArrays(nil, []int{7}))
	assert.Empty(t, mergeArrays[int](nil, nil))
}

func TestShellSort(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 2, 9, 100, 2000} {
		s := make([]byte, n)
		for i := range s {
			s[i] = byte('0' + r.Intn(9))
		}
		want := make([]byte, n)
		copy(want, s)
		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
		shellSort(s)
		assert.Equal(t, want, s, "n=%d", n)
	}
}

func TestRandom(t *testing.T) {
	a, b := NewRandom(), NewRandom()
	for i := 0; i < 100; i++ {
		v := a.Next()
		assert.Equal(t, v, b.Next())
		assert.True(t, v >= 0 && v < 1)
	}
}

func TestGather(t *testing.T) {
	results := make([][]int32, 4)
	err := mpi.RunLocal(4, func(comm mpi_api.CommInterface) error {
		res, err := gather(comm, 1, int32(comm.GetId()*10))
		results[comm.GetId()] = res
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 10, 20, 30}, results[0])
	for _, res := range results[1:] {
		assert.Nil(t, res)
	}
}

func TestWriteOrdered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ordered.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer"), 0644))
	parts := []string{"aa", "bbb", "c"}
	err := mpi.RunLocal(3, func(comm mpi_api.CommInterface) error {
		for round := 0; round < 2; round++ {
			if err := writeOrdered(comm, 5, path, []byte(parts[comm.GetId()])); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "aabbbc", string(data))
}
