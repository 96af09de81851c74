package tools

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/zeebo/blake3"

	"rhizo-cli/internal/consts"
	"rhizo-cli/internal/types"
)

var (
	ErrNotWasm         = errors.New("module is not a WASM binary")
	ErrPayloadTooLarge = errors.New("payload too large, gzip under 2MB")
)

var (
	wasmMagic     = []byte{0x00, 'a', 's', 'm'}
	wasmVersion   = []byte{0x01, 0x00, 0x00, 0x00}
	wasmHeaderLen = len(wasmMagic) + len(wasmVersion)
)

// ModuleCID 模块内容标识：源码字节的 blake3-256 摘要
func ModuleCID(source []byte) types.ContentHash {
	return types.ContentHash(blake3.Sum256(source))
}

// GzipSize 模块 gzip 压缩后的字节数（默认压缩级别，与后端的度量方式一致）
func GzipSize(source []byte) (int, error) {
	cw := &countingWriter{}
	zw := gzip.NewWriter(cw)
	if _, err := io.Copy(zw, bytes.NewReader(source)); err != nil {
		return 0, fmt.Errorf("gzip module: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("gzip module: %w", err)
	}
	return cw.n, nil
}

// CheckModuleSize gzip 后超过上限返回 ErrPayloadTooLarge，在任何网络调用之前执行
func CheckModuleSize(source []byte) (int, error) {
	size, err := GzipSize(source)
	if err != nil {
		return 0, err
	}
	if size > consts.MaxModuleGzipBytes {
		return size, fmt.Errorf("%w: %d bytes after gzip", ErrPayloadTooLarge, size)
	}
	return size, nil
}

// CheckWasmHeader 校验 magic 与版本号（\0asm + 1）
func CheckWasmHeader(source []byte) error {
	if len(source) < wasmHeaderLen {
		return fmt.Errorf("%w: only %d bytes", ErrNotWasm, len(source))
	}
	if !bytes.Equal(source[:4], wasmMagic) {
		return fmt.Errorf("%w: bad magic %x", ErrNotWasm, source[:4])
	}
	if !bytes.Equal(source[4:wasmHeaderLen], wasmVersion) {
		return fmt.Errorf("%w: unsupported version %x", ErrNotWasm, source[4:wasmHeaderLen])
	}
	return nil
}

type countingWriter struct {
	n int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += len(p)
	return len(p), nil
}
