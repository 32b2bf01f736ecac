package pebblesink

import (
	"encoding/binary"
	"errors"

	"github.com/google/uuid"
)

var recordPrefix = []byte("rec/")

const keyLen = 4 + 16 + 8

var errBadKey = errors.New("pebblesink: malformed key")

func recordKey(session uuid.UUID, seq uint64) []byte {
	key := make([]byte, 0, keyLen)
	key = append(key, recordPrefix...)
	key = append(key, session[:]...)
	return binary.BigEndian.AppendUint64(key, seq)
}

func decodeRecordKey(key []byte) (uuid.UUID, uint64, error) {
	if len(key) != keyLen || string(key[:len(recordPrefix)]) != string(recordPrefix) {
		return uuid.Nil, 0, errBadKey
	}
	var session uuid.UUID
	copy(session[:], key[len(recordPrefix):len(recordPrefix)+16])
	return session, binary.BigEndian.Uint64(key[len(recordPrefix)+16:]), nil
}

// sessionBounds returns the [lower, upper) key range of one session.
func sessionBounds(session uuid.UUID) ([]byte, []byte) {
	prefix := append(append([]byte(nil), recordPrefix...), session[:]...)
	return prefix, prefixUpperBound(prefix)
}

// prefixUpperBound returns the smallest key greater than every key with prefix.
func prefixUpperBound(prefix []byte) []byte {
	upper := append([]byte(nil), prefix...)
	for i := len(upper) - 1; i >= 0; i-- {
		upper[i]++
		if upper[i] != 0 {
			return upper[:i+1]
		}
	}
	return nil
}
