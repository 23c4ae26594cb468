package main

import (
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/crossgpu/cudashim/pkg/transport"
)

var requestsBucket = []byte("requests")

// replayLog persists a sequential record of every marshalled request the
// shim surface drives over a transport.Client, keyed by an 8-byte
// big-endian monotonic request id so bbolt's natural key ordering is also
// chronological order.
type replayLog struct {
	db  *bbolt.DB
	seq uint64
}

// openReplayLog opens (creating if necessary) a bbolt-backed replay log at
// path.
func openReplayLog(path string) (*replayLog, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("shimctl: open replay log: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(requestsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("shimctl: init replay log bucket: %w", err)
	}
	return &replayLog{db: db}, nil
}

// Record appends one request's op code, channel, and payload length to the
// log. status carries a short human-readable outcome for later
// inspection (recordingHandler passes the status's GetErrorString text,
// or the handler's error text).
func (l *replayLog) Record(op transport.OpCode, channel int, payloadLen int, status string) error {
	return l.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(requestsBucket)
		l.seq++
		var key [8]byte
		binary.BigEndian.PutUint64(key[:], l.seq)
		value := fmt.Sprintf("op=%d channel=%d bytes=%d status=%s", op, channel, payloadLen, status)
		return b.Put(key[:], []byte(value))
	})
}

func (l *replayLog) Close() error {
	return l.db.Close()
}
