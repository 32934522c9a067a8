package handlers

import "github.com/pliro-dev/pliro/internal/config"

const jsonContentType = "application/json; charset=utf-8"

// cfg holds the runtime configuration handlers read limits and expiries from.
// The default keeps handler tests independent of the environment.
var cfg = config.Default()

func Init(c *config.Config) {
	cfg = c
}
