package adam

import (
	"bytes"
	"fmt"
	"time"

	"github.com/arloliu/go-rs485/internal/exchange"
	"github.com/arloliu/go-rs485/line"
	"github.com/arloliu/go-rs485/logger"
)

// Delimiter terminates every request and reply frame.
const Delimiter byte = '\r'

// Reply kinds.
const (
	replyOK       byte = '!'
	replyWriteOK  byte = '>'
	replyRejected byte = '?'
)

// Request kinds.
const (
	requestQuery byte = '$'
	requestWrite byte = '#'
)

// Client issues ASCII protocol requests over a shared line. It is safe for
// concurrent use; exchanges are serialised by the line's guard.
type Client struct {
	line    line.Line
	timeout time.Duration
	logger  logger.Logger
	stats   *exchange.Stats
}

// NewClient creates a client on l.
func NewClient(l line.Line, opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		timeout: DefaultTimeout,
		logger:  logger.GetLogger(),
	}
	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return &Client{
		line:    l,
		timeout: cfg.timeout,
		logger:  cfg.logger,
		stats:   exchange.NewStats(),
	}, nil
}

// FormatAddress renders a module address as two uppercase hex digits.
func FormatAddress(addr byte) string {
	return fmt.Sprintf("%02X", addr)
}

// Timeout returns the reply timeout.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Stats returns the exchange counters for the module at addr.
func (c *Client) Stats(addr byte) (exchange.Snapshot, bool) {
	return c.stats.Get(addr)
}

// Query sends "$AA<command>" and returns the payload of the "!AA<payload>"
// reply.
func (c *Client) Query(addr byte, command string) (string, error) {
	return c.query(addr, command, c.timeout)
}

func (c *Client) query(addr byte, command string, timeout time.Duration) (string, error) {
	address := FormatAddress(addr)
	request := buildRequest(requestQuery, address, command)

	reply, err := c.exchange(request, timeout)
	if err == nil {
		err = validateQueryReply(request, reply, address)
	}
	c.finish(addr, request, reply, err)
	if err != nil {
		return "", err
	}

	return string(reply[3:]), nil
}

// Write sends "#AA<data>" and checks the acknowledgement. A "!AA" reply that
// echoes data must echo it exactly.
func (c *Client) Write(addr byte, data string) error {
	return c.write(addr, data, c.timeout)
}

func (c *Client) write(addr byte, data string, timeout time.Duration) error {
	address := FormatAddress(addr)
	request := buildRequest(requestWrite, address, data)

	reply, err := c.exchange(request, timeout)
	if err == nil {
		err = validateWriteReply(request, reply, address, []byte(data))
	}
	c.finish(addr, request, reply, err)

	return err
}

// exchange writes request and reads one reply frame while holding the guard.
func (c *Client) exchange(request []byte, timeout time.Duration) ([]byte, error) {
	c.line.Lock()
	defer c.line.Unlock()

	frame := make([]byte, 0, len(request)+1)
	frame = append(frame, request...)
	frame = append(frame, Delimiter)

	if err := c.line.Write(frame); err != nil {
		return nil, fmt.Errorf("adam: send request %q: %w", request, err)
	}

	reply, err := c.line.ReadFrame(timeout, Delimiter)
	if err != nil {
		return nil, fmt.Errorf("adam: waiting for reply to %q: %w", request, err)
	}

	return reply, nil
}

func (c *Client) finish(addr byte, request, reply []byte, err error) {
	c.stats.Record(addr, err)

	if err != nil {
		c.logger.Warn("adam: exchange failed",
			"address", addr,
			"request", string(request),
			"reply", string(reply),
			"error", err,
		)

		return
	}

	c.logger.Debug("adam: exchange",
		"address", addr,
		"request", string(request),
		"reply", string(reply),
	)
}

func buildRequest(kind byte, address, body string) []byte {
	request := make([]byte, 0, 1+len(address)+len(body))
	request = append(request, kind)
	request = append(request, address...)
	request = append(request, body...)

	return request
}

func validateQueryReply(request, reply []byte, address string) error {
	switch {
	case len(reply) < 3:
		return badReply(ErrBadReply, request, reply, "reply is too short")
	case reply[0] != replyOK:
		return badReply(ErrBadReply, request, reply, "reply should start with !")
	case string(reply[1:3]) != address:
		return badReply(ErrBadReply, request, reply, "reply should begin with module address "+address)
	}

	return nil
}

func validateWriteReply(request, reply []byte, address string, data []byte) error {
	if len(reply) == 0 {
		return badReply(ErrUnknownReplyKind, request, reply, "empty reply")
	}

	switch reply[0] {
	case replyWriteOK:
		if len(reply) != 1 {
			return badReply(ErrUnknownReplyKind, request, reply, "unknown reply type")
		}

		return nil

	case replyOK:
		if len(reply) < 3 || string(reply[1:3]) != address {
			return badReply(ErrBadReply, request, reply, "wrong address in reply")
		}
		if len(reply) > 3 && !bytes.Equal(reply[3:], data) {
			return badReply(ErrBadReply, request, reply, "wrong data in reply")
		}

		return nil

	case replyRejected:
		return badReply(ErrDeviceRejected, request, reply, "malformed write request")

	default:
		return badReply(ErrUnknownReplyKind, request, reply, "unknown reply type")
	}
}

func badReply(kind error, request, reply []byte, reason string) *ReplyError {
	return &ReplyError{
		Kind:    kind,
		Request: bytes.Clone(request),
		Reply:   bytes.Clone(reply),
		Reason:  reason,
	}
}
