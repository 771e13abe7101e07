package compress

import (
	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// RecordCodec turns records into msgpack frames compressed with zstd.
// EncodeAll/DecodeAll are safe for concurrent use, so one codec is shared per store.
type RecordCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewRecordCodec() (*RecordCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, errors.Wrap(err, "error when creating zstd encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Wrap(err, "error when creating zstd decoder")
	}
	return &RecordCodec{encoder: enc, decoder: dec}, nil
}

func (c *RecordCodec) Marshal(v any) ([]byte, error) {
	buf, err := msgpack.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "error when marshalling record")
	}
	return c.encoder.EncodeAll(buf, make([]byte, 0, len(buf))), nil
}

func (c *RecordCodec) Unmarshal(data []byte, v any) error {
	buf, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return errors.Wrap(err, "error when decompressing record")
	}
	if err := msgpack.Unmarshal(buf, v); err != nil {
		return errors.Wrap(err, "error when unmarshalling record")
	}
	return nil
}

func (c *RecordCodec) Close() {
	c.decoder.Close()
	_ = c.encoder.Close()
}
