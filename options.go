package instructor

import (
	"log/slog"
)

const (
	DefaultTemperature    = 0.2
	DefaultTopK           = 40
	DefaultTopP           = 0.95
	DefaultThinkingBudget = -1

	DefaultMaxRounds      = 8
	DefaultRecursionDepth = 2
	DefaultValidator      = false
	DefaultVerbose        = false
)

// PromptOptions is the endpoint and sampling configuration of a prompt.
// Transport is shared by reference when options are copied, every other field
// is a plain value.
type PromptOptions struct {
	Transport       Transport
	APIKey          string
	Model           string
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens *int
	// ThinkingBudget of -1 leaves the budget to the model.
	ThinkingBudget int
}

func DefaultPromptOptions() PromptOptions {
	return PromptOptions{
		Temperature:    DefaultTemperature,
		TopK:           DefaultTopK,
		TopP:           DefaultTopP,
		ThinkingBudget: DefaultThinkingBudget,
	}
}

// Copy returns a value copy. MaxOutputTokens gets its own pointer so the copy
// never aliases the original.
func (o PromptOptions) Copy() PromptOptions {
	if o.MaxOutputTokens != nil {
		v := *o.MaxOutputTokens
		o.MaxOutputTokens = &v
	}
	return o
}

type Option func(o *Options)

type Options struct {
	mode           Mode
	enc            Encoder
	maxRounds      int
	recursionDepth int
	metrics        Metrics
	logger         *slog.Logger
	validate       bool
	verbose        bool
}

var defaultOptions = Options{
	mode:           ModeDefault,
	maxRounds:      DefaultMaxRounds,
	recursionDepth: DefaultRecursionDepth,
	validate:       DefaultValidator,
	verbose:        DefaultVerbose,
}

func NewOptions(opts ...Option) Options {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithMode(mode Mode) Option {
	return func(o *Options) {
		o.mode = mode
	}
}

// WithEncoder replaces the encoder derived from the mode. The encoder must be
// built for the target type of every call made with these options.
func WithEncoder(enc Encoder) Option {
	return func(o *Options) {
		o.enc = enc
	}
}

// WithMaxRounds caps the number of round trips of one call, continuation
// rounds included.
func WithMaxRounds(maxRounds int) Option {
	return func(o *Options) {
		o.maxRounds = maxRounds
	}
}

func WithRecursionDepth(depth int) Option {
	return func(o *Options) {
		o.recursionDepth = depth
	}
}

func WithMetrics(m Metrics) Option {
	return func(o *Options) {
		o.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

func WithValidation() Option {
	return func(o *Options) {
		o.validate = true
	}
}

func WithVerbose() Option {
	return func(o *Options) {
		o.verbose = true
	}
}

func (i Options) Mode() Mode {
	return i.mode
}

func (i Options) Encoder() Encoder {
	return i.enc
}

func (i Options) MaxRounds() int {
	if i.maxRounds <= 0 {
		return DefaultMaxRounds
	}
	return i.maxRounds
}

func (i Options) RecursionDepth() int {
	if i.recursionDepth <= 0 {
		return DefaultRecursionDepth
	}
	return i.recursionDepth
}

func (i Options) Metrics() Metrics {
	if i.metrics == nil {
		return NoopMetrics{}
	}
	return i.metrics
}

func (i Options) Logger() *slog.Logger {
	if i.logger == nil {
		return slog.Default()
	}
	return i.logger
}

func (i Options) Validate() bool {
	return i.validate
}

func (i Options) Verbose() bool {
	return i.verbose
}

// CallOption tunes a single call.
type CallOption func(c *CallOptions)

type CallOptions struct {
	Tools     []Tool
	MaxRounds int
}

func NewCallOptions(opts ...CallOption) CallOptions {
	var c CallOptions
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithTools enables tool capabilities on the first round of the call.
func WithTools(tools ...Tool) CallOption {
	return func(c *CallOptions) {
		c.Tools = append(c.Tools, tools...)
	}
}

func WithCallMaxRounds(maxRounds int) CallOption {
	return func(c *CallOptions) {
		c.MaxRounds = maxRounds
	}
}
