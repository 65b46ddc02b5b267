//go:build !unix

package memory

func allocate(size int) ([]byte, func([]byte) error, error) {
	return make([]byte, size), nil, nil
}
