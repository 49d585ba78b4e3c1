package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/conventus/internal/auth"
	"github.com/danmuck/conventus/internal/protocol"
	"github.com/danmuck/conventus/internal/protocol/frame"
	"github.com/danmuck/conventus/internal/protocol/schema"
	"github.com/danmuck/conventus/internal/protocol/tlv"
	"github.com/danmuck/conventus/internal/stream"
)

// Config is the resolved framectl configuration.
type Config struct {
	Magic              uint32
	Version            uint16
	MaxAuthBytes       uint64
	MaxPayloadBytes    uint64
	MaxFragmentPayload int
	MaxFragments       int
	ReadChunkSize      int
	MetricsAddr        string
	LogLevel           string
	StrictSchema       bool
	Schemas            []SchemaConfig
	// AuthToken is the hex auth block every decoded message must carry.
	AuthToken string
}

// SchemaConfig declares the required fields of one message type.
type SchemaConfig struct {
	MessageType uint32        `toml:"message_type"`
	Fields      []FieldConfig `toml:"fields"`
}

type FieldConfig struct {
	ID   uint16 `toml:"id"`
	Type string `toml:"type"`
}

type fileConfig struct {
	Magic              uint32         `toml:"magic"`
	Version            uint16         `toml:"version"`
	MaxAuthBytes       uint64         `toml:"max_auth_bytes"`
	MaxPayloadBytes    uint64         `toml:"max_payload_bytes"`
	MaxFragmentPayload int            `toml:"max_fragment_payload"`
	MaxFragments       int            `toml:"max_fragments"`
	ReadChunkSize      int            `toml:"read_chunk_size"`
	MetricsAddr        string         `toml:"metrics_addr"`
	LogLevel           string         `toml:"log_level"`
	StrictSchema       bool           `toml:"strict_schema"`
	Schemas            []SchemaConfig `toml:"schema"`
	AuthToken          string         `toml:"auth_token"`
}

func DefaultConfig() Config {
	limits := frame.DefaultLimits()
	codec := protocol.DefaultCodec()
	return Config{
		Magic:              codec.Magic,
		Version:            codec.Version,
		MaxAuthBytes:       uint64(codec.MaxAuthBytes),
		MaxPayloadBytes:    limits.MaxPayloadBytes,
		MaxFragmentPayload: codec.MaxFragmentPayload,
		MaxFragments:       codec.MaxFragments,
		ReadChunkSize:      stream.DefaultChunkSize,
		LogLevel:           "info",
	}
}

// Load applies the keys defined in the TOML file at path over DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("magic") {
		cfg.Magic = raw.Magic
	}
	if meta.IsDefined("version") {
		cfg.Version = raw.Version
	}
	if meta.IsDefined("max_auth_bytes") {
		cfg.MaxAuthBytes = raw.MaxAuthBytes
	}
	if meta.IsDefined("max_payload_bytes") {
		cfg.MaxPayloadBytes = raw.MaxPayloadBytes
	}
	if meta.IsDefined("max_fragment_payload") {
		cfg.MaxFragmentPayload = raw.MaxFragmentPayload
	}
	if meta.IsDefined("max_fragments") {
		cfg.MaxFragments = raw.MaxFragments
	}
	if meta.IsDefined("read_chunk_size") {
		cfg.ReadChunkSize = raw.ReadChunkSize
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("strict_schema") {
		cfg.StrictSchema = raw.StrictSchema
	}
	if meta.IsDefined("schema") {
		cfg.Schemas = raw.Schemas
	}
	if meta.IsDefined("auth_token") {
		cfg.AuthToken = strings.TrimSpace(raw.AuthToken)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.MaxFragmentPayload <= 0 {
		return fmt.Errorf("max_fragment_payload must be positive")
	}
	if uint64(cfg.MaxFragmentPayload) > cfg.MaxPayloadBytes {
		return fmt.Errorf("max_fragment_payload %d exceeds max_payload_bytes %d", cfg.MaxFragmentPayload, cfg.MaxPayloadBytes)
	}
	if cfg.MaxFragments <= 0 {
		return fmt.Errorf("max_fragments must be positive")
	}
	if cfg.ReadChunkSize <= 0 {
		return fmt.Errorf("read_chunk_size must be positive")
	}
	if _, err := hex.DecodeString(cfg.AuthToken); err != nil {
		return fmt.Errorf("auth_token: %w", err)
	}
	for i, s := range cfg.Schemas {
		for j, f := range s.Fields {
			if _, err := ParseFieldType(f.Type); err != nil {
				return fmt.Errorf("schema[%d].fields[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

// Limits returns the frame limits the config describes.
func (c Config) Limits() frame.Limits {
	return frame.Limits{MaxAuthBytes: c.MaxAuthBytes, MaxPayloadBytes: c.MaxPayloadBytes}
}

// Codec returns the message codec the config describes, with its schema
// registry when any schema is declared and an auth check when auth_token is set.
func (c Config) Codec() (protocol.Codec, error) {
	codec := protocol.Codec{
		Magic:              c.Magic,
		Version:            c.Version,
		MaxAuthBytes:       int(c.MaxAuthBytes),
		MaxFragmentPayload: c.MaxFragmentPayload,
		MaxFragments:       c.MaxFragments,
	}
	if c.AuthToken != "" {
		token, err := hex.DecodeString(c.AuthToken)
		if err != nil {
			return protocol.Codec{}, fmt.Errorf("auth_token: %w", err)
		}
		codec.Auth = auth.StaticToken{Token: token}
	}
	if len(c.Schemas) == 0 && !c.StrictSchema {
		return codec, nil
	}
	reg := schema.NewRegistry(c.StrictSchema)
	for _, s := range c.Schemas {
		reqs := make([]schema.Requirement, 0, len(s.Fields))
		for _, f := range s.Fields {
			typeID, err := ParseFieldType(f.Type)
			if err != nil {
				return protocol.Codec{}, err
			}
			reqs = append(reqs, schema.Requirement{ID: f.ID, Type: typeID})
		}
		if err := reg.Require(s.MessageType, reqs...); err != nil {
			return protocol.Codec{}, err
		}
	}
	codec.Schema = reg
	return codec, nil
}

// ParseFieldType maps a type name used in config and message files to its
// tlv type id.
func ParseFieldType(name string) (uint8, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "u8", "uint8":
		return tlv.TypeU8, nil
	case "u16", "uint16":
		return tlv.TypeU16, nil
	case "u32", "uint32":
		return tlv.TypeU32, nil
	case "u64", "uint64":
		return tlv.TypeU64, nil
	case "bool":
		return tlv.TypeBool, nil
	case "string":
		return tlv.TypeString, nil
	case "bytes":
		return tlv.TypeBytes, nil
	default:
		return 0, fmt.Errorf("unknown field type %q", name)
	}
}
