package valkit

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a validator from options of any accepted shape.
type Factory func(options any) (Validator, error)

var (
	validatorFactories = make(map[string]Factory)
	factoryMutex       sync.RWMutex
)

// Register registers a validator factory under name
func Register(name string, factory Factory) {
	factoryMutex.Lock()
	defer factoryMutex.Unlock()
	validatorFactories[name] = factory
}

// Create creates a validator instance by name
func Create(name string, options any) (Validator, error) {
	factoryMutex.RLock()
	factory, exists := validatorFactories[name]
	factoryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("validator %s not registered", name)
	}

	return factory(options)
}

// Registered returns the names of all registered validators, sorted.
func Registered() []string {
	factoryMutex.RLock()
	defer factoryMutex.RUnlock()

	names := make([]string, 0, len(validatorFactories))
	for name := range validatorFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
