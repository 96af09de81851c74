package consts

import "time"

const (
	// MaxSeedLength 单个 PDA 种子的最大字节数（链上限制）
	MaxSeedLength = 32

	// MaxModuleGzipBytes ingest 后端接受的 gzip 后模块大小上限
	MaxModuleGzipBytes = 2 * 1024 * 1024

	// DefaultSocbAllocSize socb alloc 未指定大小时分配的字节数
	DefaultSocbAllocSize = 32
)

const (
	DefaultConfirmTimeout      = 60 * time.Second
	DefaultConfirmPollInterval = 500 * time.Millisecond
	DefaultIngestTimeout       = 30 * time.Second
)
