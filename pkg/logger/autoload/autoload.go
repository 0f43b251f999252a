// Package autoload initializes the global logger from the environment on
// import. Import for side effects from main.
package autoload

import (
	configx "github.com/vitalmech/assistant/pkg/config"
	logx "github.com/vitalmech/assistant/pkg/logger"
)

func init() {
	cfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*cfg)
}
