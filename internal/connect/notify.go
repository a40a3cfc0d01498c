package connect

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
)

// notificationLogger logs server notifications at debug level. Log
// messages (notifications/message) carry their level, logger and data.
func notificationLogger(log *slog.Logger) func(mcp.JSONRPCNotification) {
	return func(n mcp.JSONRPCNotification) {
		attrs := []any{"method", n.Method}
		for _, k := range []string{"level", "logger", "data"} {
			if v, ok := n.Params.AdditionalFields[k]; ok {
				attrs = append(attrs, k, v)
			}
		}
		log.Debug("server notification", attrs...)
	}
}
