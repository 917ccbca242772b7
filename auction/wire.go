package auction

import (
	"encoding/binary"

	"github.com/handshake-labs/nsd/errors"
)

// Flag bits of a serialized record's fieldFlags byte (spec.md §6). These
// are part of the wire format and must never be renumbered.
const (
	flagOwner byte = 1 << iota
	flagValue
	flagHighest
	flagData
	flagTransfer
	flagRevoked
	flagClaimed
	flagWeak
)

// Marshal encodes r as `a‖nameHash`'s value: nameLen, name, height,
// renewal, a flag byte, then each present optional field in flag order.
func (r *Record) Marshal() []byte {
	var flags byte
	if r.HasOwner {
		flags |= flagOwner
	}
	if r.Value != absent {
		flags |= flagValue
	}
	if r.Highest != absent {
		flags |= flagHighest
	}
	if r.Data != nil {
		flags |= flagData
	}
	if r.Transfer != absent {
		flags |= flagTransfer
	}
	if r.Revoked != absent {
		flags |= flagRevoked
	}
	if r.Claimed {
		flags |= flagClaimed
	}
	if r.Weak {
		flags |= flagWeak
	}

	buf := make([]byte, 0, 64+len(r.Name)+len(r.Data))
	buf = append(buf, byte(len(r.Name)))
	buf = append(buf, r.Name...)
	buf = appendU32(buf, r.Height)
	buf = appendU32(buf, r.Renewal)
	buf = append(buf, flags)

	if flags&flagOwner != 0 {
		buf = append(buf, r.Owner.Hash[:]...)
		buf = appendVarint(buf, uint64(r.Owner.Index))
	}
	if flags&flagValue != 0 {
		buf = appendVarint(buf, uint64(r.Value))
	}
	if flags&flagHighest != 0 {
		buf = appendVarint(buf, uint64(r.Highest))
	}
	if flags&flagData != 0 {
		buf = appendVarint(buf, uint64(len(r.Data)))
		buf = append(buf, r.Data...)
	}
	if flags&flagTransfer != 0 {
		buf = appendU32(buf, uint32(r.Transfer))
	}
	if flags&flagRevoked != 0 {
		buf = appendU32(buf, uint32(r.Revoked))
	}

	return buf
}

// Unmarshal decodes a Record previously produced by Marshal.
func Unmarshal(data []byte) (*Record, error) {
	if len(data) < 1 {
		return nil, errors.NewStorageError("auction record: empty")
	}

	nameLen := int(data[0])
	data = data[1:]
	if len(data) < nameLen+4+4+1 {
		return nil, errors.NewStorageError("auction record: truncated header")
	}

	r := &Record{Value: absent, Highest: absent, Transfer: absent, Revoked: absent}

	r.Name = append([]byte(nil), data[:nameLen]...)
	data = data[nameLen:]

	r.Height = binary.LittleEndian.Uint32(data[:4])
	data = data[4:]
	r.Renewal = binary.LittleEndian.Uint32(data[:4])
	data = data[4:]

	flags := data[0]
	data = data[1:]

	if flags&flagOwner != 0 {
		if len(data) < 32 {
			return nil, errors.NewStorageError("auction record: truncated owner hash")
		}
		copy(r.Owner.Hash[:], data[:32])
		data = data[32:]

		idx, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, errors.NewStorageError("auction record: bad owner index varint")
		}
		r.Owner.Index = uint32(idx)
		data = data[n:]
		r.HasOwner = true
	}

	if flags&flagValue != 0 {
		v, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, errors.NewStorageError("auction record: bad value varint")
		}
		r.Value = int64(v)
		data = data[n:]
	}

	if flags&flagHighest != 0 {
		v, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, errors.NewStorageError("auction record: bad highest varint")
		}
		r.Highest = int64(v)
		data = data[n:]
	}

	if flags&flagData != 0 {
		l, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, errors.NewStorageError("auction record: bad data length varint")
		}
		data = data[n:]
		if uint64(len(data)) < l {
			return nil, errors.NewStorageError("auction record: truncated data")
		}
		r.Data = append([]byte(nil), data[:l]...)
		data = data[l:]
	}

	if flags&flagTransfer != 0 {
		if len(data) < 4 {
			return nil, errors.NewStorageError("auction record: truncated transfer")
		}
		r.Transfer = int64(binary.LittleEndian.Uint32(data[:4]))
		data = data[4:]
	}

	if flags&flagRevoked != 0 {
		if len(data) < 4 {
			return nil, errors.NewStorageError("auction record: truncated revoked")
		}
		r.Revoked = int64(binary.LittleEndian.Uint32(data[:4]))
		data = data[4:]
	}

	r.Claimed = flags&flagClaimed != 0
	r.Weak = flags&flagWeak != 0

	return r, nil
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendVarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}
