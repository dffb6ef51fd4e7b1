package superchunk

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/arloliu/schunk/internal/options"
	"github.com/arloliu/schunk/metrics"
)

// Options holds the non-compression settings of a container.
type Options struct {
	Name    string
	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

// Option represents a functional option for configuring a container.
type Option = options.Option[*Options]

var containerSeq atomic.Uint64

func defaultOptions() *Options {
	return &Options{
		Name:   fmt.Sprintf("schunk-%d", containerSeq.Add(1)),
		Logger: zap.NewNop(),
	}
}

// WithName sets the name used in log fields and metric labels.
func WithName(name string) Option {
	return options.New(func(o *Options) error {
		if name == "" {
			return errors.New("container name must not be empty")
		}
		o.Name = name

		return nil
	})
}

// WithLogger sets the container logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(o *Options) {
		o.Logger = logger
		if o.Logger == nil {
			o.Logger = zap.NewNop()
		}
	})
}

// WithMetrics records container activity on r.
func WithMetrics(r *metrics.Recorder) Option {
	return options.NoError(func(o *Options) {
		o.Metrics = r
	})
}
