package patternmon

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/hupe1980/patternmon/codec"
	"github.com/hupe1980/patternmon/encoder"
	"github.com/hupe1980/patternmon/transport"
	"github.com/hupe1980/patternmon/vsa"
)

// Message is one inbound unit of work.
type Message = transport.Message

// ErrEmptyObject is the skip reason of a body holding an empty JSON object.
var ErrEmptyObject = errors.New("empty JSON object")

// WriteKind distinguishes the two persisted artifacts.
type WriteKind string

const (
	WriteSemantic WriteKind = "semantic"
	WriteBundle   WriteKind = "bundle"
)

// Write is one planned key-value set.
type Write struct {
	Key   string
	Value []byte
	Kind  WriteKind
	// Name is the field name for semantic writes and the subject for the
	// bundle write.
	Name string
}

// LogEvent is a log record decided while planning. It is emitted by Handle.
type LogEvent struct {
	Level slog.Level
	Msg   string
	Attrs []slog.Attr
}

// Plan is the side-effect free result of processing one message.
type Plan struct {
	Subject string
	// Fields is nil when the message was skipped.
	Fields *encoder.EncodedFields
	// Bundle is nil when no field was encoded.
	Bundle *vsa.SparseVec
	// Writes are ordered: semantic vectors by ascending field id, then the
	// bundle.
	Writes []Write
	Events []LogEvent
	// SkipReason is set when the message produces no writes.
	SkipReason error
}

// Skipped reports whether the plan carries no writes by design.
func (p *Plan) Skipped() bool { return p.SkipReason != nil }

// FieldCount returns the number of encoded fields.
func (p *Plan) FieldCount() int {
	if p.Fields == nil {
		return 0
	}
	return p.Fields.Len()
}

func (p *Plan) event(level slog.Level, msg string, attrs ...slog.Attr) {
	p.Events = append(p.Events, LogEvent{Level: level, Msg: msg, Attrs: attrs})
}

// Process turns a message into a Plan without touching any store.
//
// Malformed bodies, non-object bodies and empty objects yield a skipped plan
// with a warning event and a nil error. Only serialization and configuration
// faults are returned as errors.
func (m *Monitor) Process(msg Message) (*Plan, error) {
	plan := &Plan{Subject: msg.Subject}

	fields, err := encoder.EncodeFields(msg.Body, m.opts.vsaConfig)
	switch {
	case errors.Is(err, encoder.ErrParse), errors.Is(err, encoder.ErrShape):
		plan.SkipReason = err
		plan.event(slog.LevelWarn, "skipping message", slog.String("reason", err.Error()))
		return plan, nil
	case err != nil:
		return nil, err
	}

	plan.Fields = fields
	if fields.Len() == 0 {
		plan.SkipReason = ErrEmptyObject
		plan.event(slog.LevelWarn, "empty JSON object; skipping")
		return plan, nil
	}

	for _, id := range fields.IDs() {
		name := fields.Names[id]
		key := SemanticKey(name)
		if strings.Contains(name, ":") {
			plan.event(slog.LevelDebug, "field name contains key-space delimiter",
				slog.String("field", name), slog.String("key", key))
		}
		data, err := serialize(m.opts.codec, key, fields.Vectors[id])
		if err != nil {
			return nil, err
		}
		plan.Writes = append(plan.Writes, Write{Key: key, Value: data, Kind: WriteSemantic, Name: name})
	}

	bundle, ok, err := encoder.BuildBundle(fields.Vectors)
	if err != nil {
		return nil, err
	}
	if ok {
		key := BundleKey(msg.Subject)
		data, err := serialize(m.opts.codec, key, bundle)
		if err != nil {
			return nil, err
		}
		plan.Bundle = bundle
		plan.Writes = append(plan.Writes, Write{Key: key, Value: data, Kind: WriteBundle, Name: msg.Subject})
	}
	return plan, nil
}

// Serialize encodes v with c. The same vector always yields the same bytes.
func Serialize(c codec.Codec, v *vsa.SparseVec) ([]byte, error) {
	return serialize(c, "", v)
}

// Deserialize decodes a vector written by Serialize with the same codec.
func Deserialize(c codec.Codec, data []byte) (*vsa.SparseVec, error) {
	return deserialize(c, "", data)
}

func serialize(c codec.Codec, key string, v *vsa.SparseVec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	data, err := c.Marshal(v)
	if err != nil {
		return nil, &SerializeError{Key: key, Codec: c.Name(), cause: err}
	}
	return data, nil
}

func deserialize(c codec.Codec, key string, data []byte) (*vsa.SparseVec, error) {
	if c == nil {
		c = codec.Default
	}
	v := new(vsa.SparseVec)
	if err := c.Unmarshal(data, v); err != nil {
		return nil, &SerializeError{Key: key, Codec: c.Name(), cause: err}
	}
	return v, nil
}
