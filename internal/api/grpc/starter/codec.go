package starter

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype of the CBOR codec.
const CodecName = "cbor"

// Codec marshals messages as CBOR.
type Codec struct {
	// enc keeps timestamps at nanosecond precision.
	enc cbor.EncMode
	// dec rejects nothing that a newer peer may add.
	dec cbor.DecMode
}

// NewCodec creates the CBOR codec.
func NewCodec() (*Codec, error) {
	enc, err := cbor.EncOptions{
		Sort: cbor.SortCanonical,
		Time: cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor encoder mode: %w", err)
	}

	dec, err := cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyQuiet,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("cbor decoder mode: %w", err)
	}

	return &Codec{enc: enc, dec: dec}, nil
}

// Marshal encodes v.
func (c *Codec) Marshal(v any) ([]byte, error) {
	return c.enc.Marshal(v)
}

// Unmarshal decodes data into v.
func (c *Codec) Unmarshal(data []byte, v any) error {
	return c.dec.Unmarshal(data, v)
}

// Name returns CodecName.
func (*Codec) Name() string {
	return CodecName
}

func init() {
	codec, err := NewCodec()
	if err != nil {
		panic(fmt.Sprintf("starter: %v", err))
	}

	encoding.RegisterCodec(codec)
}
