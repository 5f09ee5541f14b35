// Package codec decodes response bodies into generic structured values.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrEmptyBody is returned when a body has no content to decode.
var ErrEmptyBody = errors.New("codec: empty body")

// Decoder turns a body into maps, slices and scalars.
type Decoder func(body []byte) (any, error)

const (
	MediaJSON    = "application/json"
	MediaMsgpack = "application/msgpack"
)

// Registry maps media types to decoders. The zero value is not usable; use
// NewRegistry.
type Registry struct {
	decoders map[string]Decoder
	fallback Decoder
}

// NewRegistry returns a registry knowing JSON and MessagePack. JSON is used
// for unknown or missing content types.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[string]Decoder)}
	r.Register(MediaJSON, DecodeJSON)
	r.Register("text/json", DecodeJSON)
	r.Register(MediaMsgpack, DecodeMsgpack)
	r.Register("application/x-msgpack", DecodeMsgpack)
	r.fallback = DecodeJSON
	return r
}

// Register installs a decoder for mediaType.
func (r *Registry) Register(mediaType string, dec Decoder) {
	if dec == nil {
		return
	}
	r.decoders[strings.ToLower(strings.TrimSpace(mediaType))] = dec
}

// Decode picks a decoder from contentType and decodes body.
func (r *Registry) Decode(contentType string, body []byte) (any, error) {
	dec := r.fallback
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if found, ok := r.decoders[strings.ToLower(mediaType)]; ok {
			dec = found
		} else if strings.HasSuffix(mediaType, "+json") {
			dec = DecodeJSON
		}
	}
	return dec(body)
}

// DecodeJSON decodes a JSON document.
func DecodeJSON(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyBody
	}
	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("codec: decode json: %w", err)
	}
	return out, nil
}

// DecodeMsgpack decodes a MessagePack document. Maps decode with string keys.
func DecodeMsgpack(body []byte) (any, error) {
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}
	dec := msgpack.NewDecoder(bytes.NewReader(body))
	dec.SetMapDecoder(func(d *msgpack.Decoder) (interface{}, error) {
		return d.DecodeUntypedMap()
	})
	out, err := dec.DecodeInterface()
	if err != nil {
		return nil, fmt.Errorf("codec: decode msgpack: %w", err)
	}
	return normalize(out), nil
}

// normalize rewrites map[interface{}]interface{} values into map[string]any so
// both codecs produce the same shapes.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []interface{}:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	default:
		return v
	}
}

// Lookup walks nested string-keyed maps.
func Lookup(v any, path ...string) (any, bool) {
	cur := v
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
