// Package undo implements the block-level undo log wire format of
// spec.md §6: the value stored under `u‖height`, which lets namedb's
// disconnect path exactly reverse a block's auction mutations.
package undo

import (
	"encoding/binary"

	"github.com/handshake-labs/nsd/auction"
	"github.com/handshake-labs/nsd/errors"
)

// Entry is one name's worth of undo ops for a single block.
type Entry struct {
	NameHash [32]byte
	Ops      []auction.Op
}

// Log is the full undo blob for one block: every name touched, each with
// its ops in replay (most-recent-first) order.
type Log struct {
	Entries []Entry
}

// Marshal encodes the log as `u32 count` then, per entry, `{32-byte
// nameHash, u32 opCount, ops...}`.
func (l *Log) Marshal() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(len(l.Entries)))

	for _, e := range l.Entries {
		buf = append(buf, e.NameHash[:]...)
		var count [4]byte
		binary.LittleEndian.PutUint32(count[:], uint32(len(e.Ops)))
		buf = append(buf, count[:]...)
		for _, op := range e.Ops {
			buf = appendOp(buf, op)
		}
	}

	return buf
}

// Unmarshal decodes a Log previously produced by Marshal.
func Unmarshal(data []byte) (*Log, error) {
	if len(data) < 4 {
		return nil, errors.ErrUndoMissing
	}

	count := binary.LittleEndian.Uint32(data[:4])
	data = data[4:]

	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(data) < 32+4 {
			return nil, errors.NewStorageError("undo log: truncated entry header")
		}

		var hash [32]byte
		copy(hash[:], data[:32])
		data = data[32:]

		opCount := binary.LittleEndian.Uint32(data[:4])
		data = data[4:]

		ops := make([]auction.Op, 0, opCount)
		for j := uint32(0); j < opCount; j++ {
			op, rest, err := parseOp(data)
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
			data = rest
		}

		entries = append(entries, Entry{NameHash: hash, Ops: ops})
	}

	return &Log{Entries: entries}, nil
}

// fieldTag wire identifiers, stable across versions (spec.md §6).
const (
	tagOwner byte = iota
	tagValue
	tagHighest
	tagData
	tagTransfer
	tagRevoked
	tagClaimed
	tagWeak
	tagHeight
	tagRenewal
	tagName
)

func appendOp(buf []byte, op auction.Op) []byte {
	switch op.Field {
	case auction.FieldOwner:
		buf = append(buf, tagOwner)
		if op.OldHasOwner {
			buf = append(buf, 1)
			buf = append(buf, op.OldOwner.Hash[:]...)
			buf = appendVarint(buf, uint64(op.OldOwner.Index))
		} else {
			buf = append(buf, 0)
		}

	case auction.FieldValue:
		buf = append(buf, tagValue)
		buf = appendVarint(buf, uint64(op.OldValue))

	case auction.FieldHighest:
		buf = append(buf, tagHighest)
		buf = appendVarint(buf, uint64(op.OldHighest))

	case auction.FieldData:
		buf = append(buf, tagData)
		if op.OldData == nil {
			buf = appendVarint(buf, 0)
			buf = append(buf, 0)
		} else {
			buf = append(buf, 1)
			buf = appendVarint(buf, uint64(len(op.OldData)))
			buf = append(buf, op.OldData...)
		}

	case auction.FieldTransfer:
		buf = append(buf, tagTransfer)
		buf = appendVarint(buf, uint64(op.OldTransfer))

	case auction.FieldRevoked:
		buf = append(buf, tagRevoked)
		buf = appendVarint(buf, uint64(op.OldRevoked))

	case auction.FieldClaimed:
		buf = append(buf, tagClaimed)
		buf = append(buf, boolByte(op.OldClaimed))

	case auction.FieldWeak:
		buf = append(buf, tagWeak)
		buf = append(buf, boolByte(op.OldWeak))

	case auction.FieldHeight:
		buf = append(buf, tagHeight)
		buf = appendU32(buf, op.OldHeight)

	case auction.FieldRenewal:
		buf = append(buf, tagRenewal)
		buf = appendU32(buf, op.OldRenewal)

	case auction.FieldName:
		buf = append(buf, tagName)
		buf = appendVarint(buf, uint64(len(op.OldName)))
		buf = append(buf, op.OldName...)
	}

	return buf
}

func parseOp(data []byte) (auction.Op, []byte, error) {
	if len(data) < 1 {
		return auction.Op{}, nil, errors.NewStorageError("undo log: truncated op tag")
	}
	tag := data[0]
	data = data[1:]

	switch tag {
	case tagOwner:
		if len(data) < 1 {
			return auction.Op{}, nil, errors.NewStorageError("undo log: truncated owner op")
		}
		has := data[0] != 0
		data = data[1:]
		if !has {
			return auction.Op{Field: auction.FieldOwner}, data, nil
		}
		if len(data) < 32 {
			return auction.Op{}, nil, errors.NewStorageError("undo log: truncated owner hash")
		}
		op := auction.Op{Field: auction.FieldOwner, OldHasOwner: true}
		copy(op.OldOwner.Hash[:], data[:32])
		data = data[32:]

		idx, n := binary.Uvarint(data)
		if n <= 0 {
			return auction.Op{}, nil, errors.NewStorageError("undo log: bad owner index varint")
		}
		data = data[n:]
		op.OldOwner.Index = uint32(idx)
		return op, data, nil

	case tagValue:
		v, n, err := readVarint(data)
		if err != nil {
			return auction.Op{}, nil, err
		}
		return auction.Op{Field: auction.FieldValue, OldValue: int64(v)}, data[n:], nil

	case tagHighest:
		v, n, err := readVarint(data)
		if err != nil {
			return auction.Op{}, nil, err
		}
		return auction.Op{Field: auction.FieldHighest, OldHighest: int64(v)}, data[n:], nil

	case tagData:
		if len(data) < 1 {
			return auction.Op{}, nil, errors.NewStorageError("undo log: truncated data op")
		}
		present := data[0] != 0
		data = data[1:]
		l, n, err := readVarint(data)
		if err != nil {
			return auction.Op{}, nil, err
		}
		data = data[n:]
		if uint64(len(data)) < l {
			return auction.Op{}, nil, errors.NewStorageError("undo log: truncated data body")
		}
		var old []byte
		if present {
			old = append([]byte(nil), data[:l]...)
		}
		return auction.Op{Field: auction.FieldData, OldData: old}, data[l:], nil

	case tagTransfer:
		v, n, err := readVarint(data)
		if err != nil {
			return auction.Op{}, nil, err
		}
		return auction.Op{Field: auction.FieldTransfer, OldTransfer: int64(v)}, data[n:], nil

	case tagRevoked:
		v, n, err := readVarint(data)
		if err != nil {
			return auction.Op{}, nil, err
		}
		return auction.Op{Field: auction.FieldRevoked, OldRevoked: int64(v)}, data[n:], nil

	case tagClaimed:
		if len(data) < 1 {
			return auction.Op{}, nil, errors.NewStorageError("undo log: truncated claimed op")
		}
		return auction.Op{Field: auction.FieldClaimed, OldClaimed: data[0] != 0}, data[1:], nil

	case tagWeak:
		if len(data) < 1 {
			return auction.Op{}, nil, errors.NewStorageError("undo log: truncated weak op")
		}
		return auction.Op{Field: auction.FieldWeak, OldWeak: data[0] != 0}, data[1:], nil

	case tagHeight:
		if len(data) < 4 {
			return auction.Op{}, nil, errors.NewStorageError("undo log: truncated height op")
		}
		return auction.Op{Field: auction.FieldHeight, OldHeight: binary.LittleEndian.Uint32(data[:4])}, data[4:], nil

	case tagRenewal:
		if len(data) < 4 {
			return auction.Op{}, nil, errors.NewStorageError("undo log: truncated renewal op")
		}
		return auction.Op{Field: auction.FieldRenewal, OldRenewal: binary.LittleEndian.Uint32(data[:4])}, data[4:], nil

	case tagName:
		l, n, err := readVarint(data)
		if err != nil {
			return auction.Op{}, nil, err
		}
		data = data[n:]
		if uint64(len(data)) < l {
			return auction.Op{}, nil, errors.NewStorageError("undo log: truncated name op")
		}
		return auction.Op{Field: auction.FieldName, OldName: append([]byte(nil), data[:l]...)}, data[l:], nil

	default:
		return auction.Op{}, nil, errors.NewStorageError("undo log: unknown field tag %d", tag)
	}
}

func readVarint(data []byte) (uint64, int, error) {
	v, n := binary.Uvarint(data)
	if n <= 0 {
		return 0, 0, errors.NewStorageError("undo log: bad varint")
	}
	return v, n, nil
}

func appendVarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
