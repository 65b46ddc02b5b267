package matrix

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snake4(t *testing.T) *Matrix {
	m, err := FromRows([][]int32{
		{1, 2, 3, 4},
		{8, 7, 6, 5},
		{9, 10, 11, 12},
		{16, 15, 14, 13},
	})
	require.NoError(t, err)
	return m
}

func TestNew_invalidDimension(t *testing.T) {
	_, err := New(0)
	assert.Equal(t, ErrDimension, errors.Cause(err))
	_, err = FromRows([][]int32{{1, 2}, {3}})
	assert.Equal(t, ErrDimension, errors.Cause(err))
}

func TestLayouts(t *testing.T) {
	assert.Equal(t, Layout{Offset: 8, Count: 4, Stride: 1}, RowLayout(4, 2))
	assert.Equal(t, Layout{Offset: 2, Count: 4, Stride: 4}, ColumnLayout(4, 2))
}

func TestGatherScatter(t *testing.T) {
	m := snake4(t)
	assert.Equal(t, []int32{9, 10, 11, 12}, m.Row(2))
	col1, err := m.Gather(ColumnLayout(4, 1), nil)
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 7, 10, 15}, col1)

	buf := make([]int32, 0, 4)
	col, err := m.Gather(Layout{Offset: 3, Count: 4, Stride: 4}, buf)
	require.NoError(t, err)
	assert.Equal(t, []int32{4, 5, 12, 13}, col)

	require.NoError(t, m.Scatter(ColumnLayout(4, 0), []int32{0, 0, 0, 0}))
	assert.Equal(t, []int32{0, 2, 3, 4}, m.Row(0))
	assert.Equal(t, []int32{0, 7, 6, 5}, m.Row(1))

	err = m.Scatter(RowLayout(4, 1), []int32{1, 2})
	assert.Equal(t, ErrLayout, errors.Cause(err))
	_, err = m.Gather(Layout{Offset: 4, Count: 4, Stride: 4}, nil)
	assert.Equal(t, ErrLayout, errors.Cause(err))
	_, err = m.Gather(Layout{Offset: 0, Count: 4, Stride: 0}, nil)
	assert.Equal(t, ErrLayout, errors.Cause(err))
	_, err = m.Gather(Layout{Offset: -1, Count: 2, Stride: 1}, nil)
	assert.Equal(t, ErrLayout, errors.Cause(err))
}

func TestDiagonalsSorted(t *testing.T) {
	assert.True(t, snake4(t).DiagonalsSorted())

	m := snake4(t)
	m.Set(2, 1, 20)
	assert.False(t, m.DiagonalsSorted(), "diagonal below the main one")

	m = snake4(t)
	m.Set(0, 2, 7)
	assert.False(t, m.DiagonalsSorted(), "diagonal above the main one")

	one, err := New(1)
	require.NoError(t, err)
	assert.True(t, one.DiagonalsSorted())

	dup, err := FromRows([][]int32{{5, 5}, {5, 5}})
	require.NoError(t, err)
	assert.True(t, dup.DiagonalsSorted())
}

func TestCloneEqualValues(t *testing.T) {
	m, err := New(5)
	require.NoError(t, err)
	m.Fill(rand.New(rand.NewSource(3)))
	c := m.Clone()
	assert.True(t, m.Equal(c))
	c.Set(4, 4, c.At(4, 4)+1)
	assert.False(t, m.Equal(c))
	assert.Len(t, m.Values(), 25)
	assert.Equal(t, m.Row(0), m.Values()[:5])
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	snake4(t).Print(&buf)
	assert.Equal(t, 4, strings.Count(buf.String(), "\n"))
	buf.Reset()
	snake4(t).PrintDiagonals(&buf)
	assert.Equal(t, 7, strings.Count(buf.String(), "\n"))
}
