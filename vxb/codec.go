package vxb

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// Codec names stored in the grid_trees.codec column.
const (
	CodecNone = "none"
	CodecGzip = "gzip"
	CodecLZ4  = "lz4"
)

func validCodec(name string) bool {
	switch name {
	case CodecNone, CodecGzip, CodecLZ4:
		return true
	}
	return false
}

func compressPayload(codec string, gzipLevel int, raw []byte) ([]byte, error) {
	switch codec {
	case CodecNone:
		return raw, nil
	case CodecGzip:
		var buf bytes.Buffer
		zw, err := gzip.NewWriterLevel(&buf, gzipLevel)
		if err != nil {
			return nil, fmt.Errorf("gzip writer: %w", err)
		}
		if _, err := zw.Write(raw); err != nil {
			return nil, fmt.Errorf("gzip compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("gzip close: %w", err)
		}
		return buf.Bytes(), nil
	case CodecLZ4:
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("lz4 close: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown codec %q", codec)
}

// decompressPayload undoes compressPayload. rawBytes is the recorded
// uncompressed size and bounds the output, so a corrupt payload cannot
// balloon memory.
func decompressPayload(codec string, payload []byte, rawBytes int64) ([]byte, error) {
	switch codec {
	case CodecNone:
		return payload, nil
	case CodecGzip:
		zr, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer zr.Close()
		return readAllLimited(zr, rawBytes)
	case CodecLZ4:
		return readAllLimited(lz4.NewReader(bytes.NewReader(payload)), rawBytes)
	}
	return nil, fmt.Errorf("unknown codec %q", codec)
}

func readAllLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("payload inflates past its recorded %d bytes", limit)
	}
	return data, nil
}
