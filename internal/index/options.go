package index

import (
	"fmt"

	"github.com/mihirdhamankar/searchlite/internal/codec"
	apperrors "github.com/mihirdhamankar/searchlite/pkg/errors"
)

// Mode selects how matches are scored.
type Mode int

const (
	// ModeBoolean reports matches without scores.
	ModeBoolean Mode = iota
	// ModeTermFreq scores by within-document term frequency.
	ModeTermFreq
	// ModeTFIDF scores by term frequency weighted by inverse document
	// frequency.
	ModeTFIDF
)

func (m Mode) String() string {
	switch m {
	case ModeBoolean:
		return "boolean"
	case ModeTermFreq:
		return "tf"
	case ModeTFIDF:
		return "tfidf"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Ranked reports whether the mode produces scores.
func (m Mode) Ranked() bool {
	return m == ModeTermFreq || m == ModeTFIDF
}

// ParseMode maps a config tag to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "boolean", "bool":
		return ModeBoolean, nil
	case "tf", "freq":
		return ModeTermFreq, nil
	case "tfidf", "tf-idf":
		return ModeTFIDF, nil
	default:
		return 0, fmt.Errorf("%w: unknown ranking mode %q", apperrors.ErrConfiguration, s)
	}
}

// Optimization selects index-time acceleration structures.
type Optimization int

const (
	OptNone Optimization = iota
	// OptSkipPointers augments posting lists with skip pointers.
	// Only meaningful for boolean retrieval.
	OptSkipPointers
)

func (o Optimization) String() string {
	switch o {
	case OptNone:
		return "none"
	case OptSkipPointers:
		return "skip"
	default:
		return fmt.Sprintf("optimization(%d)", int(o))
	}
}

// ParseOptimization maps a config tag to an Optimization.
func ParseOptimization(s string) (Optimization, error) {
	switch s {
	case "none", "":
		return OptNone, nil
	case "skip", "skip-pointers":
		return OptSkipPointers, nil
	default:
		return 0, fmt.Errorf("%w: unknown optimization %q", apperrors.ErrConfiguration, s)
	}
}

// Options is the identity of an index: how it scores, how postings are
// encoded on disk, and which acceleration structures it carries. A
// persisted index can only be loaded with the identity it was built with.
type Options struct {
	Mode         Mode
	Compression  codec.Scheme
	Optimization Optimization
}

// Validate rejects incoherent combinations.
func (o Options) Validate() error {
	if o.Optimization == OptSkipPointers && o.Mode.Ranked() {
		return fmt.Errorf("%w: skip pointers require boolean mode, got %s",
			apperrors.ErrConfiguration, o.Mode)
	}
	if o.Compression > codec.SchemeDeflate {
		return fmt.Errorf("%w: unknown compression scheme %s",
			apperrors.ErrConfiguration, o.Compression)
	}
	return nil
}

// OptionsFromConfig parses the string tags used in config files.
func OptionsFromConfig(mode, compression, optimization string) (Options, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return Options{}, err
	}
	c, err := codec.ParseScheme(compression)
	if err != nil {
		return Options{}, fmt.Errorf("%w: %v", apperrors.ErrConfiguration, err)
	}
	o, err := ParseOptimization(optimization)
	if err != nil {
		return Options{}, err
	}
	opts := Options{Mode: m, Compression: c, Optimization: o}
	return opts, opts.Validate()
}
