package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/abgdnv/meiasjamais/pkg/logger"
	"go.mongodb.org/mongo-driver/v2/event"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// NewLogger creates the process logger writing JSON, or logfmt-style text when format is "text", to stdout.
// Records are tagged with service and carry the trace and request identifiers found in their context.
func NewLogger(service, level, format string) *slog.Logger {
	logLevel := toLevel(level)
	loggerOpts := &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	}
	var logHandler slog.Handler = slog.NewJSONHandler(os.Stdout, loggerOpts)
	if strings.EqualFold(format, "text") {
		logHandler = slog.NewTextHandler(os.Stdout, loggerOpts)
	}
	return slog.New(logger.NewContextHandler(logHandler, service))
}

// NewMongoClient connects to MongoDB and pings the primary so that a bad URL fails at startup.
// Failed commands are logged at warn level. With logCommands, every command is also logged at debug level.
func NewMongoClient(ctx context.Context, url string, connectTimeout time.Duration, logCommands bool, logger *slog.Logger) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(url).
		SetConnectTimeout(connectTimeout).
		SetMonitor(commandMonitor(logger, logCommands))

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return client, nil
}

func commandMonitor(logger *slog.Logger, logCommands bool) *event.CommandMonitor {
	monitor := &event.CommandMonitor{
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			logger.WarnContext(ctx, "Mongo command failed",
				slog.String("command", evt.CommandName),
				slog.String("database", evt.DatabaseName),
				slog.Int64("mongo_request_id", evt.RequestID),
				slog.Duration("duration", evt.Duration),
				slog.Any("error", evt.Failure),
			)
		},
	}
	if logCommands {
		monitor.Succeeded = func(ctx context.Context, evt *event.CommandSucceededEvent) {
			logger.DebugContext(ctx, "Mongo command succeeded",
				slog.String("command", evt.CommandName),
				slog.String("database", evt.DatabaseName),
				slog.Int64("mongo_request_id", evt.RequestID),
				slog.Duration("duration", evt.Duration),
			)
		}
	}
	return monitor
}

// toLevel converts a string representation of a log level to slog.Level.
func toLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
