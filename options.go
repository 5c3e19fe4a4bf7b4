package proposal

import "go.uber.org/zap"

// Option is a functional option for configuring a Generator via New.
type Option func(*Generator)

// WithMappingPath sets the field mapping config used when a request names
// none.
func WithMappingPath(path string) Option {
	return func(g *Generator) {
		g.mappingPath = path
	}
}

// WithCoordinatesPath sets the coordinates config used when a request names
// none.
func WithCoordinatesPath(path string) Option {
	return func(g *Generator) {
		g.coordsPath = path
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a Generator.
//
// Example:
//
//	g := proposal.New(
//	    proposal.WithMappingPath("configs/mapping.json"),
//	    proposal.WithCoordinatesPath("configs/coordinates.json"),
//	    proposal.WithLogger(logger),
//	)
func New(opts ...Option) *Generator {
	g := &Generator{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}
