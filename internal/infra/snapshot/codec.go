// Package snapshot encodes the application state tree for storage.
//
// A stored snapshot is built in three layers, each optional except the
// first:
//
//	format       json | yaml | cbor
//	compression  none | zstd | lz4
//	encryption   age X25519, when an identity file is configured
//
// With the defaults (json, no compression, no identity) the stored bytes
// are plain JSON in the {"tasks":{"task_list":[...]}} layout. Decoding
// sniffs every layer from the data itself, so changing the configuration
// never strands an existing snapshot.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/opus/internal/domain"
)

// Options configures a Codec.
type Options struct {
	Format       string // domain.FormatJSON (default), FormatYAML or FormatCBOR
	Compression  string // domain.CompressionNone (default), CompressionZstd or CompressionLZ4
	IdentityFile string // age identity; empty disables encryption
}

// Codec converts between domain.RootState and stored bytes.
// A Codec is safe for concurrent use.
type Codec struct {
	sealer      *sealer
	format      string
	compression string
}

// New builds a Codec from opts.
func New(opts Options) (*Codec, error) {
	c := &Codec{
		format:      opts.Format,
		compression: opts.Compression,
	}
	if c.format == "" {
		c.format = domain.FormatJSON
	}
	if c.compression == "" {
		c.compression = domain.CompressionNone
	}

	switch c.format {
	case domain.FormatJSON, domain.FormatYAML, domain.FormatCBOR:
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFormat, c.format)
	}
	switch c.compression {
	case domain.CompressionNone, domain.CompressionZstd, domain.CompressionLZ4:
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCompression, c.compression)
	}

	if opts.IdentityFile != "" {
		s, err := loadSealer(opts.IdentityFile)
		if err != nil {
			return nil, err
		}
		c.sealer = s
	}
	return c, nil
}

// Encrypted reports whether encoded snapshots are encrypted.
func (c *Codec) Encrypted() bool {
	return c.sealer != nil
}

// Marshal serializes state in the configured format.
// The result is deterministic for a given state, which makes it the
// right input for Digest.
func (c *Codec) Marshal(state domain.RootState) ([]byte, error) {
	state = normalize(state)
	switch c.format {
	case domain.FormatYAML:
		return yaml.Marshal(state)
	case domain.FormatCBOR:
		return cborEncMode.Marshal(state)
	default:
		return json.Marshal(state)
	}
}

// Seal applies compression and encryption to marshaled bytes.
func (c *Codec) Seal(plain []byte) ([]byte, error) {
	data, err := compress(plain, c.compression)
	if err != nil {
		return nil, err
	}
	if c.sealer != nil {
		return c.sealer.encrypt(data)
	}
	return data, nil
}

// Encode is Marshal followed by Seal.
func (c *Codec) Encode(state domain.RootState) ([]byte, error) {
	plain, err := c.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return c.Seal(plain)
}

// Decode reverses Encode. Corrupt or undecodable input returns an error
// wrapping domain.ErrSnapshotCorrupted.
func (c *Codec) Decode(data []byte) (domain.RootState, error) {
	if isEncrypted(data) {
		if c.sealer == nil {
			return domain.RootState{}, fmt.Errorf("%w: snapshot is encrypted but no identity is configured", domain.ErrSnapshotCorrupted)
		}
		plain, err := c.sealer.decrypt(data)
		if err != nil {
			return domain.RootState{}, fmt.Errorf("%w: %w", domain.ErrSnapshotCorrupted, err)
		}
		data = plain
	}

	data, err := decompress(data)
	if err != nil {
		return domain.RootState{}, fmt.Errorf("%w: %w", domain.ErrSnapshotCorrupted, err)
	}

	var state domain.RootState
	switch sniffFormat(data) {
	case domain.FormatJSON:
		err = json.Unmarshal(data, &state)
	case domain.FormatCBOR:
		err = cborDecMode.Unmarshal(data, &state)
	default:
		err = yaml.Unmarshal(data, &state)
	}
	if err != nil {
		return domain.RootState{}, fmt.Errorf("%w: %w", domain.ErrSnapshotCorrupted, err)
	}
	return normalize(state), nil
}

// normalize replaces a nil task list with an empty one so every format
// round-trips to the same value.
func normalize(state domain.RootState) domain.RootState {
	if state.Tasks.TaskList == nil {
		state.Tasks.TaskList = []domain.Task{}
	}
	return state
}

// sniffFormat guesses the serialization format from the first byte.
// CBOR snapshots start with a definite-length map header (major type 5).
func sniffFormat(data []byte) string {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return domain.FormatYAML
	}
	switch b := trimmed[0]; {
	case b == '{':
		return domain.FormatJSON
	case b >= 0xa0 && b <= 0xbb:
		return domain.FormatCBOR
	default:
		return domain.FormatYAML
	}
}

// cborEncMode uses Core Deterministic Encoding so identical states
// produce identical bytes. Times are kept as RFC 3339 text to match the
// JSON layout and keep sub-second precision.
var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	cborEncMode, err = encOptions.EncMode()
	if err != nil {
		panic("snapshot: CBOR encoder initialization failed: " + err.Error())
	}

	cborDecMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("snapshot: CBOR decoder initialization failed: " + err.Error())
	}
}
