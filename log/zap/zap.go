package zap

import (
	"go.uber.org/zap"

	"github.com/tidegate/stratacache"
)

type ZapLogger struct{ L *zap.Logger }

var _ stratacache.Logger = ZapLogger{}

func (z ZapLogger) Debug(msg string, f stratacache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f stratacache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f stratacache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f stratacache.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f stratacache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
