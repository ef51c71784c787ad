// Package encoding holds the payload codecs used for CLI output and for
// messages published to NATS.
package encoding

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	cbor "github.com/fxamacker/cbor/v2"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

// Static errors for err113 compliance.
var (
	ErrUnknownFormat   = errors.New("unknown encoding format")
	ErrNotProtoMessage = errors.New("value is not a protobuf message")
)

// Format names.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatCBOR  = "cbor"
	FormatProto = "proto"
)

// Codec marshals values for one format.
type Codec interface {
	Name() string
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Registry maps format names to codecs.
type Registry struct {
	byName map[string]Codec
}

// NewRegistry returns a registry with the JSON, YAML, CBOR and Protobuf codecs.
func NewRegistry() (*Registry, error) {
	cborCodec, err := CBOR()
	if err != nil {
		return nil, err
	}

	r := &Registry{byName: make(map[string]Codec)}
	r.Register(JSON())
	r.Register(YAML())
	r.Register(cborCodec)
	r.Register(Proto())

	return r, nil
}

// Register adds or replaces a codec.
func (r *Registry) Register(c Codec) {
	r.byName[c.Name()] = c
}

// Get returns the codec for a format name.
func (r *Registry) Get(name string) (Codec, error) {
	c, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}

	return c, nil
}

// Names lists the registered formats in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

type jsonCodec struct{}

// JSON returns a JSON codec (RFC 8259).
func JSON() Codec { return jsonCodec{} }

func (jsonCodec) Name() string                       { return FormatJSON }
func (jsonCodec) ContentType() string                { return "application/json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type yamlCodec struct{}

// YAML returns a YAML codec.
func YAML() Codec { return yamlCodec{} }

func (yamlCodec) Name() string                       { return FormatYAML }
func (yamlCodec) ContentType() string                { return "application/yaml" }
func (yamlCodec) Marshal(v any) ([]byte, error)      { return yaml.Marshal(v) }
func (yamlCodec) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// CBOR returns a deterministic CBOR codec (RFC 8949, canonical encoding).
// Struct fields use their json tags.
func CBOR() (Codec, error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("creating cbor encoder: %w", err)
	}

	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("creating cbor decoder: %w", err)
	}

	return cborCodec{enc: em, dec: dm}, nil
}

func (c cborCodec) Name() string                       { return FormatCBOR }
func (c cborCodec) ContentType() string                { return "application/cbor" }
func (c cborCodec) Marshal(v any) ([]byte, error)      { return c.enc.Marshal(v) }
func (c cborCodec) Unmarshal(data []byte, v any) error { return c.dec.Unmarshal(data, v) }

type protoCodec struct{}

// Proto returns a Protobuf codec. It only accepts proto.Message values.
func Proto() Codec { return protoCodec{} }

func (protoCodec) Name() string        { return FormatProto }
func (protoCodec) ContentType() string { return "application/x-protobuf" }

func (protoCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotProtoMessage, v)
	}

	return proto.Marshal(m)
}

func (protoCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotProtoMessage, v)
	}

	return proto.Unmarshal(data, m)
}
