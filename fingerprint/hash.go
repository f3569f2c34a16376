package fingerprint

import (
	"encoding/hex"
	"io"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"

	"github.com/fluxforge/aslc/invariant"
	"github.com/fluxforge/aslc/ir"
)

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	invariant.ExpectNoError(err, "cbor canonical encoding options must be valid")
	return mode
}

// Encode returns the deterministic CBOR encoding of sm's canonicalized
// graph: identical input always produces byte-identical output, which is
// what the round-trip and idempotence testable properties assert on.
func Encode(sm *ir.StateMachine) []byte {
	invariant.NotNil(sm, "sm")
	c := canonicalize(sm.Name, sm.States, sm.StartKey, sm.Schedule, sm.Subscription, sm.Exported)
	b, err := encMode.Marshal(c)
	invariant.ExpectNoError(err, "canonical state machine must encode")
	return b
}

// Hash returns the SHA3-256 digest of sm's canonical CBOR encoding.
func Hash(sm *ir.StateMachine) [32]byte {
	return sha3.Sum256(Encode(sm))
}

// DisplayHash derives an 8-byte hex tag from sm's canonical hash via
// HKDF-SHA3-256, the same construction core/planfmt/idfactory.go uses to
// turn a content hash into a short, deterministic display identifier
// instead of a randomly generated one.
func DisplayHash(sm *ir.StateMachine) string {
	digest := Hash(sm)
	reader := hkdf.New(sha3.New256, digest[:], nil, []byte("aslc/statemachine/v1"))
	tag := make([]byte, 8)
	if _, err := io.ReadFull(reader, tag); err != nil {
		invariant.ExpectNoError(err, "hkdf must derive a display tag")
	}
	return hex.EncodeToString(tag)
}

// Equal reports whether two state machines have identical canonical
// encodings, the property "running the translator twice on the same input
// yields identical IR" reduces to.
func Equal(a, b *ir.StateMachine) bool {
	return Hash(a) == Hash(b)
}
