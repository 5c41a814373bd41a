package script

import (
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// consoleAPI routes console.* to the logger.
type consoleAPI struct {
	logger *zap.Logger
}

func (c *consoleAPI) register(vm *goja.Runtime) {
	console := vm.NewObject()
	console.Set("log", c.at(zap.InfoLevel))
	console.Set("info", c.at(zap.InfoLevel))
	console.Set("debug", c.at(zap.DebugLevel))
	console.Set("warn", c.at(zap.WarnLevel))
	console.Set("error", c.at(zap.ErrorLevel))
	vm.Set("console", console)
}

func (c *consoleAPI) at(level zapcore.Level) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if ce := c.logger.Check(level, formatArgs(call.Arguments)); ce != nil {
			ce.Write()
		}
		return goja.Undefined()
	}
}

func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
