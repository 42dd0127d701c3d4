package api

import (
	"time"

	"gorm.io/gorm"

	"github.com/workmate-ai/workmate/core/manager"
	"github.com/workmate-ai/workmate/rag"
)

type Config struct {
	AppName      string
	Version      string
	AllowOrigins string
	JWTSecret    string
	TokenTTL     time.Duration
	DB           *gorm.DB
	Manager      *manager.Manager
	Loader       *rag.DocumentLoader
}

type Option func(*Config)

func WithAppName(name string) Option {
	return func(c *Config) {
		c.AppName = name
	}
}

func WithVersion(version string) Option {
	return func(c *Config) {
		c.Version = version
	}
}

func WithAllowOrigins(origins string) Option {
	return func(c *Config) {
		c.AllowOrigins = origins
	}
}

func WithJWTSecret(secret string) Option {
	return func(c *Config) {
		c.JWTSecret = secret
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.TokenTTL = ttl
	}
}

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

func WithManager(m *manager.Manager) Option {
	return func(c *Config) {
		c.Manager = m
	}
}

// WithDocumentLoader enables the document indexing endpoints. Without it the
// document CRUD still works, only the vector store is left untouched.
func WithDocumentLoader(loader *rag.DocumentLoader) Option {
	return func(c *Config) {
		c.Loader = loader
	}
}

func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

func NewConfig(opts ...Option) *Config {
	c := &Config{
		AppName:      "WorkMate",
		Version:      "1.0.0",
		AllowOrigins: "http://localhost:3000",
		TokenTTL:     24 * time.Hour,
	}
	c.Apply(opts...)
	return c
}
