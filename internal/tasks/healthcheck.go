package tasks

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Имена задач health-check.
const (
	TaskPing              = "ping"
	TaskConnectivityCheck = "connectivity-check"
)

const defaultDialTimeout = 5 * time.Second

// PingTask — no-op подтверждение живости worker'а: сам факт
// выполнения означает, что консьюмер разбирает очередь.
type PingTask struct{}

// NewPingTask создаёт ping-задачу.
func NewPingTask() *PingTask {
	return &PingTask{}
}

func (t *PingTask) Name() string {
	return TaskPing
}

func (t *PingTask) Execute(_ context.Context, req *Request) (*Result, error) {
	return NewResult(map[string]any{
		"pong":     true,
		"schedule": req.Schedule,
	}), nil
}

// ConnectivityCheckTask проверяет TCP-доступность адреса из параметров
// schedule (params: address, timeout_seconds).
type ConnectivityCheckTask struct {
	dial func(network, address string, timeout time.Duration) (net.Conn, error)
}

// NewConnectivityCheckTask создаёт задачу проверки связности.
func NewConnectivityCheckTask() *ConnectivityCheckTask {
	return &ConnectivityCheckTask{dial: net.DialTimeout}
}

func (t *ConnectivityCheckTask) Name() string {
	return TaskConnectivityCheck
}

func (t *ConnectivityCheckTask) Execute(ctx context.Context, req *Request) (*Result, error) {
	address := ParamString(req.Params, "address", "")
	if address == "" {
		return nil, fmt.Errorf("connectivity check: address param is required")
	}

	timeout := defaultDialTimeout
	if secs := ParamInt(req.Params, "timeout_seconds", 0); secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	started := time.Now()
	conn, err := t.dial("tcp", address, timeout)
	if err != nil {
		return NewResult(map[string]any{
			"address":   address,
			"reachable": false,
			"error":     err.Error(),
		}), nil
	}
	defer conn.Close()

	return NewResult(map[string]any{
		"address":    address,
		"reachable":  true,
		"latency_ms": time.Since(started).Milliseconds(),
	}), nil
}
