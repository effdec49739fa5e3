package dispatch

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"cipherkit/internal/config"
	"cipherkit/internal/errors"
	"cipherkit/internal/slogutil"
	"cipherkit/internal/storage"
	"cipherkit/internal/textnorm"
)

// Result is the outcome of a successful Execute.
type Result struct {
	Algorithm string   `json:"algorithm" yaml:"algorithm" toml:"algorithm"`
	Operation string   `json:"operation" yaml:"operation" toml:"operation"`
	Param     string   `json:"param,omitempty" yaml:"param,omitempty" toml:"param,omitempty"`
	Input     string   `json:"input" yaml:"input" toml:"input"`
	Output    string   `json:"output" yaml:"output" toml:"output"`
	Alphabet  string   `json:"alphabet,omitempty" yaml:"alphabet,omitempty" toml:"alphabet,omitempty"`
	Warnings  []string `json:"warnings,omitempty" yaml:"warnings,omitempty" toml:"warnings,omitempty"`
}

// Dispatcher validates requests, builds a fresh cipher for each and
// journals the outcome. It holds no per-request state and is safe for
// concurrent use.
type Dispatcher struct {
	registry *Registry
	defaults config.DefaultsConfig
	logger   *slog.Logger
	recorder storage.Recorder
	source   storage.Source
	rng      *rand.Rand
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger (default: discard).
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithRecorder sets the history recorder (default: none).
func WithRecorder(r storage.Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// WithSource tags journal entries with the calling front end.
func WithSource(s storage.Source) Option {
	return func(d *Dispatcher) { d.source = s }
}

// WithRand fixes the source used for random substitution alphabets.
func WithRand(rng *rand.Rand) Option {
	return func(d *Dispatcher) { d.rng = rng }
}

// New creates a dispatcher using cfg's defaults. A nil cfg uses
// config.DefaultConfig().
func New(cfg *config.Config, opts ...Option) *Dispatcher {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	d := &Dispatcher{
		registry: NewRegistry(),
		defaults: cfg.Defaults,
		logger:   slogutil.NewDiscardLogger(),
		recorder: storage.NopRecorder{},
		source:   storage.SourceCLI,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the algorithm registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Execute runs one cipher call. Every failure is a *errors.CipherError.
func (d *Dispatcher) Execute(ctx context.Context, req Request) (*Result, error) {
	op, err := ParseOperation(req.Operation)
	if err != nil {
		return nil, err
	}

	algo, ok := d.registry.Lookup(req.Algorithm)
	if !ok {
		return nil, unsupported(d.registry, req.Algorithm)
	}

	param := strings.TrimSpace(req.Param)
	if algo.Param.Required() && param == "" {
		return nil, missingParam(algo, string(op))
	}
	if algo.Param == ParamNone {
		param = ""
	}

	text := textnorm.Canonical(req.Text)
	if strings.TrimSpace(text) == "" {
		return nil, errors.Newf(errors.EmptyInput, "please provide text to process")
	}
	if limit := d.defaults.MaxInputBytes; limit > 0 && len(text) > limit {
		return nil, errors.Newf(errors.InputTooLarge, "input is %d bytes, limit is %d", len(text), limit).
			WithDetails(map[string]int{"size": len(text), "limit": limit})
	}

	res, err := d.run(op, algo, param, text)
	d.record(ctx, algo.Name, op, text, res, err)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("Cipher executed",
		"algorithm", algo.Name,
		"operation", string(op),
		"inputRunes", utf8.RuneCountInString(text),
		"outputRunes", utf8.RuneCountInString(res.Output),
	)
	for _, w := range res.Warnings {
		d.logger.Warn(w, "algorithm", algo.Name)
	}
	return res, nil
}

func (d *Dispatcher) run(op Operation, algo Algorithm, param, text string) (*Result, error) {
	c, err := algo.build(builder{param: param, defaults: d.defaults, rng: d.rng})
	if err != nil {
		return nil, errors.New(errors.InvalidParameter, "invalid "+algo.Name+" parameter", err)
	}

	res := &Result{
		Algorithm: algo.Name,
		Operation: string(op),
		Param:     param,
		Input:     text,
	}

	if t, ok := c.(table); ok {
		if algo.Name == "simple_substitution" && param == "" {
			res.Alphabet = strings.Join(t.Alphabet(), "")
		}
		if algo.Name == "mixed_alphabet" && !t.Bijective() {
			res.Warnings = append(res.Warnings,
				"keyword contains non-letters or uppercase letters; the cipher alphabet is not a permutation of a-z and decipher may not round-trip")
		}
	}

	switch op {
	case OpCipher:
		res.Output, err = c.Encipher(text)
	default:
		res.Output, err = c.Decipher(text)
	}
	if err != nil {
		return nil, errors.New(errors.InvalidParameter, string(op)+" failed", err)
	}
	return res, nil
}

func (d *Dispatcher) record(ctx context.Context, algorithm string, op Operation, input string, res *Result, runErr error) {
	var output, code string
	if res != nil {
		output = res.Output
	}
	if runErr != nil {
		code = string(errors.CodeOf(runErr))
	}

	entry := storage.NewEntry(algorithm, string(op), d.source, input, output, code)
	if err := d.recorder.Record(ctx, entry); err != nil {
		d.logger.Warn("Failed to record history", "error", err)
	}
}
