// Package config validates the two knobs that shape a forwarding
// table: its row count and slots per row.
package config

import (
	"fmt"

	"github.com/l2fwd/l2fwd/internal/l2err"
	"github.com/l2fwd/l2fwd/internal/l2table"
)

// DefaultSize and DefaultBucket are the values Validate substitutes
// when a caller omits size/bucket.
const (
	DefaultSize   = 1024
	DefaultBucket = 4
)

// Config holds the module's construction-time parameters.
type Config struct {
	Size   int `json:"size"`
	Bucket int `json:"bucket"`
}

// Default returns a Config with the table core's default dimensions.
func Default() Config {
	return Config{Size: DefaultSize, Bucket: DefaultBucket}
}

// Validate applies defaults for zero fields and checks the result
// against the table core's constraints, returning a descriptive
// error wrapping ErrInvalidArgument.
func (c Config) Validate() (Config, error) {
	if c.Size == 0 {
		c.Size = DefaultSize
	}
	if c.Bucket == 0 {
		c.Bucket = DefaultBucket
	}

	if c.Size < 0 || c.Size > l2table.MaxSize || !isPowerOf2(c.Size) {
		return c, fmt.Errorf("%w: size %d must be a power of two in (0, %d]", l2err.ErrInvalidArgument, c.Size, l2table.MaxSize)
	}
	if c.Bucket < 0 || c.Bucket > l2table.MaxBucket || !isPowerOf2(c.Bucket) {
		return c, fmt.Errorf("%w: bucket %d must be a power of two in (0, %d]", l2err.ErrInvalidArgument, c.Bucket, l2table.MaxBucket)
	}
	return c, nil
}

func isPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
