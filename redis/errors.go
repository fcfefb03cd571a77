package redis

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/gokv/errors"
)

// classify maps a go-redis error for command onto the error taxonomy.
// goredis.Nil is not an error here; callers turn it into a nil reply.
func classify(service, command string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsAppError(err); ok {
		return err
	}

	switch {
	case stderrors.Is(err, context.Canceled):
		return errors.Cancelled(err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Timeout(command).WithCause(err)
	case stderrors.Is(err, goredis.ErrClosed), stderrors.Is(err, net.ErrClosed):
		return errors.ConnectionFailed(service).WithCause(err).WithDetail("reason", "client closed")
	case stderrors.Is(err, io.EOF), stderrors.Is(err, io.ErrUnexpectedEOF):
		return errors.ConnectionFailed(service).WithCause(err)
	}

	var redisErr goredis.Error
	if stderrors.As(err, &redisErr) {
		msg := redisErr.Error()
		if strings.Contains(strings.ToLower(msg), "invalid cursor") {
			return errors.InvalidCursor(msg).WithCause(err).WithDetail("command", command)
		}
		return errors.RemoteProtocol(command, msg).WithCause(err)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return errors.Timeout(command).WithCause(err)
		}
		return errors.ConnectionFailed(service).WithCause(err)
	}

	if strings.Contains(err.Error(), "pool timeout") {
		return errors.Timeout(command).WithCause(err).WithDetail("reason", "connection pool exhausted")
	}
	return errors.RemoteProtocol(command, err.Error()).WithCause(err)
}
