package proto

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content-subtype both sides of the connection agree
// on. The server forces it via grpc.ForceServerCodec, clients select it
// with grpc.CallContentSubtype.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(Codec{})
}

// Codec serializes the hand-defined message structs of this package.
type Codec struct{}

func (Codec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (Codec) Name() string {
	return CodecName
}
