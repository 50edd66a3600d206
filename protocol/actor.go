package protocol

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ActorID identifies a peer that edits documents. It holds the lowercase
// hex encoding of the actor's raw bytes, so values compare, sort and hash
// exactly like the bytes they encode.
type ActorID string

// NewActorID returns a random 16-byte actor identity.
func NewActorID() ActorID {
	u := uuid.New()
	return ActorIDFromBytes(u[:])
}

// ActorIDFromBytes encodes raw bytes as an actor identity.
func ActorIDFromBytes(b []byte) ActorID {
	return ActorID(hex.EncodeToString(b))
}

// ActorIDFromString parses a hex-encoded actor identity.
func ActorIDFromString(s string) (ActorID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("parse actor id %q: %w", s, err)
	}
	return ActorIDFromBytes(b), nil
}

// Bytes returns the raw bytes behind the identity.
func (a ActorID) Bytes() []byte {
	b, _ := hex.DecodeString(string(a))
	return b
}

func (a ActorID) String() string {
	return string(a)
}

// Compare orders actors by their raw bytes.
func (a ActorID) Compare(other ActorID) int {
	return strings.Compare(string(a), string(other))
}

// OpIDAt returns the id of this actor's operation with the given counter.
func (a ActorID) OpIDAt(counter uint64) OpID {
	return OpID{Counter: counter, Actor: a}
}
