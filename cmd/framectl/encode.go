package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/danmuck/conventus/internal/config"
	"github.com/danmuck/conventus/internal/logging"
	"github.com/danmuck/conventus/internal/protocol"
	"github.com/danmuck/conventus/internal/protocol/frame"
	"github.com/danmuck/conventus/internal/protocol/tlv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// messageFile is the YAML document accepted by encode.
type messageFile struct {
	Messages []messageDef `yaml:"messages"`
}

type messageDef struct {
	ID       uint64     `yaml:"id"`
	Type     uint32     `yaml:"type"`
	Response bool       `yaml:"response"`
	Error    bool       `yaml:"error"`
	Auth     string     `yaml:"auth"`
	Fields   []fieldDef `yaml:"fields"`
}

type fieldDef struct {
	ID    uint16    `yaml:"id"`
	Type  string    `yaml:"type"`
	Value yaml.Node `yaml:"value"`
}

func newEncodeCmd(opts *rootOptions) *cobra.Command {
	var inPath, outPath string
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode YAML message definitions into frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(inPath)
			if err != nil {
				return err
			}
			msgs, err := parseMessages(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", inPath, err)
			}

			out := cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return writeMessages(out, msgs, opts.cfg)
		},
	}
	cmd.Flags().StringVarP(&inPath, "file", "f", "", "YAML message definitions")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func writeMessages(out io.Writer, msgs []protocol.Message, cfg config.Config) error {
	codec, err := cfg.Codec()
	if err != nil {
		return err
	}
	w := bufio.NewWriter(out)
	for _, m := range msgs {
		if err := protocol.WriteMessage(w, m, codec, cfg.Limits()); err != nil {
			return fmt.Errorf("encode message %d: %w", m.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	log := logging.Logger("framectl")
	log.Info().Int("messages", len(msgs)).Msg("encode complete")
	return nil
}

func parseMessages(raw []byte) ([]protocol.Message, error) {
	var doc messageFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	out := make([]protocol.Message, 0, len(doc.Messages))
	for i, def := range doc.Messages {
		msg, err := def.message()
		if err != nil {
			return nil, fmt.Errorf("messages[%d]: %w", i, err)
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s messageDef) message() (protocol.Message, error) {
	msg := protocol.Message{ID: s.ID, Type: s.Type}
	if s.Response {
		msg.Flags |= frame.FlagIsResponse
	}
	if s.Error {
		msg.Flags |= frame.FlagIsError
	}
	if s.Auth != "" {
		auth, err := hex.DecodeString(s.Auth)
		if err != nil {
			return protocol.Message{}, fmt.Errorf("auth: %w", err)
		}
		msg.Auth = auth
	}
	for j, fs := range s.Fields {
		f, err := fs.field()
		if err != nil {
			return protocol.Message{}, fmt.Errorf("fields[%d]: %w", j, err)
		}
		msg.Fields = append(msg.Fields, f)
	}
	return msg, nil
}

func (s fieldDef) field() (tlv.Field, error) {
	typeID, err := config.ParseFieldType(s.Type)
	if err != nil {
		return tlv.Field{}, err
	}
	if s.Value.Kind != yaml.ScalarNode {
		return tlv.Field{}, fmt.Errorf("field %d: value must be a scalar", s.ID)
	}
	text := s.Value.Value

	switch typeID {
	case tlv.TypeU8:
		v, err := parseUint(s.ID, text, 8)
		return tlv.NewUint8(s.ID, uint8(v)), err
	case tlv.TypeU16:
		v, err := parseUint(s.ID, text, 16)
		return tlv.NewUint16(s.ID, uint16(v)), err
	case tlv.TypeU32:
		v, err := parseUint(s.ID, text, 32)
		return tlv.NewUint32(s.ID, uint32(v)), err
	case tlv.TypeU64:
		v, err := parseUint(s.ID, text, 64)
		return tlv.NewUint64(s.ID, v), err
	case tlv.TypeBool:
		v, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return tlv.Field{}, fmt.Errorf("field %d: %w", s.ID, err)
		}
		return tlv.NewBool(s.ID, v), nil
	case tlv.TypeString:
		return tlv.NewString(s.ID, text), nil
	default:
		v, err := hex.DecodeString(strings.TrimSpace(text))
		if err != nil {
			return tlv.Field{}, fmt.Errorf("field %d: %w", s.ID, err)
		}
		return tlv.NewBytes(s.ID, v), nil
	}
}

func parseUint(id uint16, text string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(text), 0, bits)
	if err != nil {
		return 0, fmt.Errorf("field %d: %w", id, err)
	}
	return v, nil
}
