// Package codec encodes persisted blobs. JSON is the default; CBOR produces a
// compact deterministic encoding of the same structures.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Codec marshals values to and from a single blob.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON returns the JSON codec.
func JSON() Codec { return jsonCodec{} }

// CBOR returns the CBOR codec.
func CBOR() Codec { return cborCodec{} }

// ByName resolves "json" or "cbor".
func ByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSON(), nil
	case "cbor":
		return CBOR(), nil
	default:
		return nil, fmt.Errorf("unknown codec %q (want json or cbor)", name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Core Deterministic Encoding: the same collection always encodes to the same
// bytes. Times keep nanoseconds; IDs go through their text form.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

type cborCodec struct{}

func (cborCodec) Name() string { return "cbor" }

func (cborCodec) Marshal(v any) ([]byte, error) { return encMode.Marshal(v) }

func (cborCodec) Unmarshal(data []byte, v any) error { return decMode.Unmarshal(data, v) }
