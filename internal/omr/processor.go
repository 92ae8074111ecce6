package omr

import (
	"fmt"
	"log"
	"time"

	"github.com/ironsheep/omr-tools-mcp/internal/detection"
	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// Processor runs the extraction pipeline. It holds only immutable settings
// and is safe for concurrent use; every call owns its buffers.
type Processor struct {
	cfg    Config
	loader *imaging.Loader
	logger *log.Logger
	debug  bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithLoader replaces the default sheet loader, e.g. to plug in another PDF
// rasterizer.
func WithLoader(l *imaging.Loader) Option {
	return func(p *Processor) {
		if l != nil {
			p.loader = l
		}
	}
}

// WithLogger sets the logger used for diagnostics. The default is the
// standard logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithDebug enables per-stage debug logging.
func WithDebug(enabled bool) Option {
	return func(p *Processor) {
		p.debug = enabled
	}
}

// New validates cfg and returns a Processor using it.
func New(cfg Config, opts ...Option) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	p := &Processor{
		cfg:    cfg,
		loader: imaging.NewLoader(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns a copy of the processor's configuration.
func (p *Processor) Config() Config {
	cfg := p.cfg
	cfg.AllowedExtensions = append([]string(nil), p.cfg.AllowedExtensions...)
	cfg.Preprocess.Strategies = append([]string(nil), p.cfg.Preprocess.Strategies...)
	return cfg
}

// Process extracts the answers from the sheet at path.
//
// It never returns an error: every failure, including a panic inside a
// stage, becomes a Result with Success false and a classified Code.
func (p *Processor) Process(path string, totalQuestions, choices int) Result {
	return p.ProcessWithConfig(path, totalQuestions, choices, p.cfg)
}

// ProcessWithConfig is Process with a per-call configuration in place of the
// processor's own. An invalid cfg fails with CodeInvalidArgument before the
// file is touched.
func (p *Processor) ProcessWithConfig(path string, totalQuestions, choices int, cfg Config) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Printf("Recovered panic while processing %s: %v", path, r)
			res = failure(fmt.Errorf("internal failure: %v", r), path, start)
		}
	}()

	if err := cfg.Validate(); err != nil {
		return failure(fmt.Errorf("%w: invalid config: %v", ErrInvalidArgument, err), path, start)
	}

	a, err := p.analyze(path, totalQuestions, choices, cfg)
	if err != nil {
		p.debugf("Processing %s failed: %v", path, err)
		return failure(err, path, start)
	}

	answers := detection.ExtractAnswers(a.columns, totalQuestions, choices, cfg.ConfidenceThreshold)
	confidence := detection.Confidence(a.bubbles, answers, totalQuestions, choices, cfg.ConfidenceThreshold)
	p.debugf("%s: %d answers, confidence %.2f in %s", path, len(answers), confidence, time.Since(start))

	return success(answers, confidence, len(a.bubbles), start)
}

// analysis carries the stage outputs of one run.
type analysis struct {
	prepared *imaging.Prepared
	contours []detection.Contour
	bubbles  []detection.Bubble
	stats    detection.FilterStats
	columns  []detection.Column
}

// analyze runs every stage up to layout inference.
func (p *Processor) analyze(path string, totalQuestions, choices int, cfg Config) (*analysis, error) {
	if err := ValidateFile(path, cfg.MaxFileBytes, cfg.AllowedExtensions); err != nil {
		return nil, err
	}
	if err := checkArgs(totalQuestions, choices); err != nil {
		return nil, err
	}

	loader := *p.loader
	loader.DPI = cfg.DPI
	img, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load sheet: %w", err)
	}
	bounds := img.Bounds()
	p.debugf("%s: loaded %dx%d", path, bounds.Dx(), bounds.Dy())

	prepared, err := imaging.Preprocess(img, cfg.Preprocess)
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess sheet: %w", err)
	}

	contours := detection.FindExternalContours(prepared.Mask)
	p.debugf("%s: %d contours (%s backend)", path, len(contours), detection.Backend)
	if len(contours) == 0 {
		return nil, ErrNoRegionsDetected
	}

	bubbles, stats := detection.FilterBubbles(contours, prepared.Mask, cfg.Filter)
	p.debugf("%s: filter kept %d of %d (area %d, circularity %d, aspect %d, band [%.0f, %.0f])",
		path, stats.Accepted, stats.Contours, stats.RejectedArea, stats.RejectedCircularity,
		stats.RejectedAspect, stats.MinArea, stats.MaxArea)
	if len(bubbles) == 0 {
		return nil, ErrNoValidRegions
	}

	columns := detection.AnalyzeLayout(bubbles, cfg.Layout)
	p.debugf("%s: %d columns", path, len(columns))

	return &analysis{
		prepared: prepared,
		contours: contours,
		bubbles:  bubbles,
		stats:    stats,
		columns:  columns,
	}, nil
}

func (p *Processor) debugf(format string, args ...interface{}) {
	if p.debug {
		p.logger.Printf(format, args...)
	}
}

// SheetInfo validates the sheet file and reports its dimensions, format and
// page count without running detection.
func (p *Processor) SheetInfo(path string) (*imaging.ImageInfo, error) {
	if err := ValidateFile(path, p.cfg.MaxFileBytes, p.cfg.AllowedExtensions); err != nil {
		return nil, err
	}
	loader := *p.loader
	loader.DPI = p.cfg.DPI
	return imaging.LoadImageInfo(&loader, path)
}
