package stratacache

import "fmt"

// EvictionConfig configures a capacity-bounding strategy. MaxSize is
// required and must be positive.
type EvictionConfig struct {
	MaxSize int
	Logger  Logger // nil => NopLogger
	Hooks   Hooks  // nil => NopHooks
}

func (c EvictionConfig) validate() error {
	if c.MaxSize <= 0 {
		return fmt.Errorf("%w: max size must be positive, got %d", ErrConfiguration, c.MaxSize)
	}
	return nil
}

func (c EvictionConfig) logger() Logger { return coalesce[Logger](c.Logger, NopLogger{}) }
func (c EvictionConfig) hook() Hooks    { return coalesce[Hooks](c.Hooks, NopHooks{}) }
