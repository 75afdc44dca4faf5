package lincheck

// checkerOptions holds configuration resolved from CheckerOption values.
type checkerOptions struct {
	covering   Covering
	relaxation RelaxationPolicy
	logger     Logger
	metrics    bool
}

// CheckerOption configures a [Checker] constructed via [NewChecker].
type CheckerOption func(*checkerOptions)

// WithCovering selects the [Covering] the checker's DFS uses to gate
// event coverage. Defaults to [ExternalCausality]{}.
func WithCovering(c Covering) CheckerOption {
	return func(o *checkerOptions) { o.covering = c }
}

// WithRelaxation installs the [RelaxationPolicy] threaded through replay
// validation. Defaults to [Strict]().
func WithRelaxation(p RelaxationPolicy) CheckerOption {
	return func(o *checkerOptions) { o.relaxation = p }
}

// WithLogger installs a [Logger] for barrier-race detection and DFS
// diagnostics. Defaults to the package-wide logger set via
// [SetStructuredLogger], or a no-op logger if none was set.
func WithLogger(l Logger) CheckerOption {
	return func(o *checkerOptions) { o.logger = l }
}

// WithMetrics enables recording [SearchStats] during the search. Disabled
// by default; stats are always returned on [Result] but are left at their
// zero value when disabled, at effectively zero overhead.
func WithMetrics(enabled bool) CheckerOption {
	return func(o *checkerOptions) { o.metrics = enabled }
}

func resolveCheckerOptions(opts []CheckerOption) *checkerOptions {
	cfg := &checkerOptions{
		covering:   ExternalCausality{},
		relaxation: Strict(),
		logger:     getGlobalLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// builderOptions holds configuration resolved from BuilderOption values.
type builderOptions struct {
	logger Logger
}

// BuilderOption configures an [ExecutionBuilder] constructed via
// [NewExecutionBuilder].
type BuilderOption func(*builderOptions)

// WithBuilderLogger installs a [Logger] the builder uses to report
// rejected (malformed) append calls at [LevelWarn].
func WithBuilderLogger(l Logger) BuilderOption {
	return func(o *builderOptions) { o.logger = l }
}

func resolveBuilderOptions(opts []BuilderOption) *builderOptions {
	cfg := &builderOptions{logger: getGlobalLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}
