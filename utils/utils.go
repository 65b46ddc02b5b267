package utils

import (
	"net"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

func Min[T constraints.Ordered](x, y T) T {
	if x < y {
		return x
	}
	return y
}

func Max[T constraints.Ordered](x, y T) T {
	if x < y {
		return y
	}
	return x
}

// StringToIpAndPort splits an address of the form host:port.
func StringToIpAndPort(addr string) (string, int, error) {
	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, errors.Wrapf(err, "parsing address %q", addr)
	}
	port, err := strconv.Atoi(p)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, errors.Errorf("invalid port in address %q", addr)
	}
	if host == "" {
		host = "localhost"
	}
	return host, port, nil
}

// ParseInts converts every argument to an int, naming the first one that is
// not a number in the error.
func ParseInts(args []string) ([]int, error) {
	res := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, errors.Errorf("argument %d (%q) is not a number", i+1, a)
		}
		res[i] = v
	}
	return res, nil
}

// SplitRange divides [0, total) into size parts and returns the part of the
// given rank. The last rank takes the remainder.
func SplitRange(total, size, rank int) (int, int) {
	part := total / size
	low := rank * part
	high := low + part
	if rank == size-1 {
		high = total
	}
	return low, high
}
