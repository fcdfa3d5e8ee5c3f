package explanation

import (
	"encoding/json"
	"fmt"
	"time"
)

/*
JSONCodec encodes sessions as JSON for stores with a byte-oriented
backend. Only the session id, creation time and the raw payload are
serialized; the tree, decoder, hierarchies and cached instance paths
are derived data and are rebuilt on decode.
*/
type JSONCodec struct{}

type storedSession struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Payload   *Explanation `json:"payload"`
}

/*
Encode receives a *Session and returns a slice of bytes with the
session encoded or an error if the encoding could not be performed
for some reason.
*/
func (JSONCodec) Encode(s *Session) ([]byte, error) {
	return json.Marshal(storedSession{ID: s.ID, CreatedAt: s.CreatedAt, Payload: s.Explanation})
}

/*
Decode receives a slice of bytes and returns a *Session decoded from
the slice of bytes, with its tree, decoder and per-kind states rebuilt
from the payload, or an error if the decoding could not be performed
for some reason.
*/
func (JSONCodec) Decode(data []byte) (*Session, error) {
	ss := &storedSession{}
	if err := json.Unmarshal(data, ss); err != nil {
		return nil, fmt.Errorf("decoding stored session: %w", err)
	}
	if ss.Payload == nil {
		return nil, fmt.Errorf("decoding stored session %q: no payload", ss.ID)
	}
	return newSession(ss.Payload, ss.ID, ss.CreatedAt)
}
