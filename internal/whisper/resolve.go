package whisper

import (
	"fmt"
	"os"
	"strings"
)

// Quantization is a reduced-precision weight representation offered by the
// registry as pre-quantized repo variants.
type Quantization int

const (
	QuantNone Quantization = iota
	Quant4Bit
	Quant8Bit
)

func (q Quantization) String() string {
	switch q {
	case Quant4Bit:
		return "4bit"
	case Quant8Bit:
		return "8bit"
	default:
		return "none"
	}
}

// ParseQuantization accepts the user-facing quantization spellings. An empty
// string means no quantization.
func ParseQuantization(input string) (Quantization, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "none":
		return QuantNone, nil
	case "4bit", "4-bit":
		return Quant4Bit, nil
	case "8bit", "8-bit":
		return Quant8Bit, nil
	default:
		return QuantNone, fmt.Errorf("%w: quantization must be 4bit or 8bit, got %q", ErrInvalidArgument, input)
	}
}

// ModelSpec is the user-supplied identity of a desired model.
type ModelSpec struct {
	Name  string
	Quant Quantization
}

// Source is the single concrete location a model loads from: either a local
// directory or a remote repo identifier. It has no identity beyond its string.
type Source string

// Resolve turns a model spec into a concrete source, in precedence order:
// a registered pre-quantized variant, then the registered unquantized repo,
// then the name itself when it looks like an explicit path or repo.
//
// A quantization request for a name without a registered variant deliberately
// falls back to the unquantized repo instead of erroring.
func Resolve(spec ModelSpec) (Source, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return "", fmt.Errorf("%w: model name must not be empty", ErrInvalidArgument)
	}

	if spec.Quant != QuantNone {
		if repo, ok := LookupQuantRepo(name, spec.Quant); ok {
			return Source(repo), nil
		}
	}

	if repo, ok := LookupRepo(name); ok {
		return Source(repo), nil
	}

	if looksLikeSource(name) {
		return Source(name), nil
	}

	return "", &UnknownModelError{Name: name, Known: ModelNames()}
}

// looksLikeSource reports whether a model reference is an explicit repo id or
// filesystem path rather than a friendly name.
func looksLikeSource(input string) bool {
	return strings.ContainsRune(input, '/') || strings.ContainsRune(input, os.PathSeparator)
}
