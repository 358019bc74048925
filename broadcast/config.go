package broadcast

import "github.com/kbukum/streamcast/errors"

// DefaultCapacity is the cache capacity used when a Config leaves it unset.
const DefaultCapacity = 64

// Config describes a broadcast in service configuration.
type Config struct {
	Name     string `yaml:"name" mapstructure:"name" validate:"required"`
	Capacity int    `yaml:"capacity" mapstructure:"capacity" validate:"min=1"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "broadcast"
	}
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.MissingField("broadcast.name")
	}
	if c.Capacity < 1 {
		return errors.InvalidCapacity(c.Capacity)
	}
	return nil
}

// NewFromConfig is New with the name and capacity taken from cfg.
// Options given here override the configured name.
func NewFromConfig[T any](source Source[T], cfg Config, opts ...Option) (*Handle[T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(source, cfg.Capacity, append([]Option{WithName(cfg.Name)}, opts...)...)
}
