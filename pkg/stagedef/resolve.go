package stagedef

import (
	"github.com/Faultbox/stagedef/pkg/encoding"
	"github.com/Faultbox/stagedef/pkg/endian"
	"github.com/Faultbox/stagedef/pkg/stagedef/ppc"
)

// resolver turns blob-relative offsets into validated byte views. Offsets are
// always relative to the start of the blob, never to the record holding them.
type resolver struct {
	data []byte
}

// check validates that count records of size bytes fit at off. It reports
// present=false for the null offset, which is never dereferenced.
func (r *resolver) check(field string, off ppc.Offset, size, count uint32) (present bool, err error) {
	if off.IsNull() {
		return false, nil
	}
	n := uint64(len(r.data))
	if uint64(off) >= n {
		return false, outOfRange(field, uint32(off))
	}
	needed := uint64(size) * uint64(count)
	if uint64(off)+needed > n {
		return false, truncated(field, uint32(off), needed)
	}
	return true, nil
}

// bytes returns the n bytes at off. The range must have been checked.
func (r *resolver) bytes(off, n uint32) []byte {
	return r.data[off : off+n : off+n]
}

// cString scans the NUL-terminated string at off, reading no further than
// limit. It returns the string and whether a terminator was found before
// limit. A string running off the end of the blob is Truncated.
func (r *resolver) cString(field string, off ppc.Offset, limit uint64) (s []byte, terminated bool, err error) {
	if _, err := r.check(field, off, 1, 1); err != nil {
		return nil, false, err
	}
	end := uint64(len(r.data))
	if limit < end {
		end = limit
	}
	s, ok := encoding.CString(r.data[off:end])
	if ok {
		return s, true, nil
	}
	if end < uint64(len(r.data)) {
		return s, false, nil
	}
	return nil, false, truncated(field, uint32(off), end-uint64(off)+1)
}

// triIndexList scans the TriIndexListEnd terminated list at off, stopping
// early when it reaches limit. It returns the entries read, their highest
// index (-1 when none) and the offset where the scan stopped: the
// terminator, or limit.
func (r *resolver) triIndexList(field string, off ppc.Offset, limit uint64) (length uint32, max int32, stop uint32, err error) {
	if _, err := r.check(field, off, ppc.TriIndexSize, 1); err != nil {
		return 0, -1, 0, err
	}
	max = -1
	pos := uint64(off)
	n := uint64(len(r.data))
	for pos != limit {
		if pos+ppc.TriIndexSize > n {
			return 0, -1, 0, truncated(field, uint32(off), pos+ppc.TriIndexSize-uint64(off))
		}
		v := endian.U16(r.data[pos:])
		if v == ppc.TriIndexListEnd {
			break
		}
		if int32(v) > max {
			max = int32(v)
		}
		length++
		pos += ppc.TriIndexSize
	}
	return length, max, uint32(pos), nil
}
