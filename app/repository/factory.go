package repository

import (
	"sync"

	"github.com/vidora/vidora-web/internal/pkg/apiclient"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	client *apiclient.Client
	repos  *Repositories
	once   sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(client *apiclient.Client) *Factory {
	return &Factory{
		client: client,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.client)
	})
	return f.repos
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(client *apiclient.Client) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(client)
	})
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("Repository factory not initialized. Call InitializeFactory first.")
	}
	return globalFactory
}

// GetGlobalRepositories returns the global repositories instance
func GetGlobalRepositories() *Repositories {
	return GetGlobalFactory().GetRepositories()
}
