package config

import (
	"time"

	"github.com/kbukum/streamcast/broadcast"
	"github.com/kbukum/streamcast/errors"
	"github.com/kbukum/streamcast/logger"
	"github.com/kbukum/streamcast/observability"
	"github.com/kbukum/streamcast/sse"
	"github.com/kbukum/streamcast/version"
)

// ServiceConfig is the configuration of the streamcast service.
type ServiceConfig struct {
	Name          string               `yaml:"name" mapstructure:"name" validate:"required"`
	Environment   string               `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version       string               `yaml:"version" mapstructure:"version"`
	Broadcast     broadcast.Config     `yaml:"broadcast" mapstructure:"broadcast"`
	Source        SourceConfig         `yaml:"source" mapstructure:"source"`
	HTTP          sse.ServerConfig     `yaml:"http" mapstructure:"http"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// SourceConfig configures the demo ticker source.
type SourceConfig struct {
	// Interval between two ticks.
	Interval time.Duration `yaml:"interval" mapstructure:"interval" validate:"gt=0"`
	// Limit ends the source after this many ticks. Zero means unbounded.
	Limit int `yaml:"limit" mapstructure:"limit" validate:"gte=0"`
}

// ApplyDefaults fills unset fields of every section.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "streamcast"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Version == "" {
		c.Version = version.Version
	}
	if c.Broadcast.Name == "" {
		c.Broadcast.Name = "ticks"
	}
	c.Broadcast.ApplyDefaults()
	if c.Source.Interval == 0 {
		c.Source.Interval = time.Second
	}
	c.HTTP.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks struct tags first and then the section validators.
func (c *ServiceConfig) Validate() error {
	if err := ValidateStruct(c); err != nil {
		return err
	}
	if err := c.Broadcast.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.InvalidInput("logging", err.Error())
	}
	return nil
}
