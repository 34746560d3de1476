package main

import (
	"encoding/binary"
	"math"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"

	"github.com/go-rmi/rmi"
)

// loadKeys memory-maps path and decodes its fixed-width little-endian
// records into U512-boxed keys, dispatching on the file name's
// discriminator substring (spec.md §6's input file format). The first
// 8 bytes of the file are the record count; the map stays open for the
// process lifetime since the training run only ever reads from it.
func loadKeys(path string) (rmi.KeyType, []rmi.U512, error) {
	kind, recordWidth, err := discriminateKind(path)
	if err != nil {
		return 0, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "opening data file %q", path)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "memory-mapping data file %q", path)
	}

	if len(m) < 8 {
		return 0, nil, errors.Errorf("data file %q is shorter than the 8-byte record-count header", path)
	}
	n := binary.LittleEndian.Uint64(m[0:8])

	keys := make([]rmi.U512, n)
	for i := uint64(0); i < n; i++ {
		start := 8 + i*uint64(recordWidth)
		end := start + uint64(recordWidth)
		if end > uint64(len(m)) {
			return 0, nil, errors.Errorf("data file %q truncated at record %d", path, i)
		}
		keys[i] = decodeRecord(kind, m[start:end])
	}

	return kind, keys, nil
}

// discriminateKind maps a file name's discriminator substring (spec.md
// §6: uint32/uint64/uint128/uint512/f64) to a KeyType and its
// fixed record width in bytes.
func discriminateKind(path string) (rmi.KeyType, int, error) {
	name := strings.ToLower(path)
	switch {
	case strings.Contains(name, "uint512"):
		return rmi.U512Kind, 64, nil
	case strings.Contains(name, "uint128"):
		return rmi.U128, 16, nil
	case strings.Contains(name, "uint64"):
		return rmi.U64, 8, nil
	case strings.Contains(name, "uint32"):
		return rmi.U32, 4, nil
	case strings.Contains(name, "f64"):
		return rmi.F64, 8, nil
	default:
		return 0, 0, errors.Errorf("data file %q has no recognized discriminator substring (uint32/uint64/uint128/uint512/f64)", path)
	}
}

func decodeRecord(kind rmi.KeyType, record []byte) rmi.U512 {
	switch kind {
	case rmi.U32:
		return rmi.U512FromUint64(uint64(binary.LittleEndian.Uint32(record)))
	case rmi.U64:
		return rmi.U512FromUint64(binary.LittleEndian.Uint64(record))
	case rmi.F64:
		return rmi.U512FromFloat64Bits(math.Float64frombits(binary.LittleEndian.Uint64(record)))
	case rmi.U128:
		var limbs [8]uint64
		limbs[0] = binary.LittleEndian.Uint64(record[0:8])
		limbs[1] = binary.LittleEndian.Uint64(record[8:16])
		return rmi.U512(limbs)
	case rmi.U512Kind:
		var limbs [8]uint64
		for i := 0; i < 8; i++ {
			limbs[i] = binary.LittleEndian.Uint64(record[i*8 : (i+1)*8])
		}
		return rmi.U512(limbs)
	default:
		return rmi.U512{}
	}
}
