package rounddomain

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CodeLength is the number of characters in a round code.
const CodeLength = 6

// CodeAlphabet is the set of characters a round code is drawn from.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ErrEmptyCode is returned by ParseCode for blank input.
var ErrEmptyCode = errors.New("round code is required")

// Code is a short public join token for a round.
type Code string

// ParseCode trims and upper-cases raw user input.
func ParseCode(raw string) (Code, error) {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if c == "" {
		return "", ErrEmptyCode
	}
	return Code(c), nil
}

// Valid reports whether c has the shape of a generated code.
func (c Code) Valid() bool {
	if len(c) != CodeLength {
		return false
	}
	for i := 0; i < len(c); i++ {
		if strings.IndexByte(CodeAlphabet, c[i]) < 0 {
			return false
		}
	}
	return true
}

func (c Code) String() string { return string(c) }

// CodeGenerator draws round codes from a random source.
type CodeGenerator struct {
	rand io.Reader
}

// NewCodeGenerator returns a generator backed by crypto/rand.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{rand: rand.Reader}
}

// NewCodeGeneratorFrom returns a generator reading from r.
func NewCodeGeneratorFrom(r io.Reader) *CodeGenerator {
	return &CodeGenerator{rand: r}
}

// maxUnbiased is the largest multiple of len(CodeAlphabet) that fits in a byte.
const maxUnbiased = 256 - 256%len(CodeAlphabet)

// Generate returns a fresh candidate. Each candidate is independent of the last.
func (g *CodeGenerator) Generate() (Code, error) {
	out := make([]byte, 0, CodeLength)
	buf := make([]byte, CodeLength*2)
	for len(out) < CodeLength {
		if _, err := io.ReadFull(g.rand, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, CodeAlphabet[int(b)%len(CodeAlphabet)])
			if len(out) == CodeLength {
				break
			}
		}
	}
	return Code(out), nil
}

// GenerateUnique loops until exists reports a candidate as free. There is no
// attempt limit; ctx bounds the loop.
func (g *CodeGenerator) GenerateUnique(ctx context.Context, exists func(context.Context, Code) (bool, error)) (Code, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code, err := g.Generate()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check round code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
}
