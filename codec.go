package lockbox

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// jsonCodec implements Codec for JSON, the canonical encoding used by
// default since the host's transport and persistence layers are JSON-based.
type jsonCodec struct{}

// JSON returns the JSON codec.
func JSON() Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// msgpackCodec implements Codec for MessagePack. Only the encrypted payload
// bytes change; the envelope around them stays JSON-compatible either way.
type msgpackCodec struct{}

// Msgpack returns the MessagePack codec, a compact alternative canonical
// encoding for large step payloads.
func Msgpack() Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal decodes MessagePack data into v.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
