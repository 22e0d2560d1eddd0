package chromiumoxide

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"

	"github.com/mattsse/chromiumoxide/cdp"
)

var (
	// DefaultReadBufferSize is the default maximum read buffer size.
	DefaultReadBufferSize = 25 * 1024 * 1024

	// DefaultWriteBufferSize is the default maximum write buffer size.
	DefaultWriteBufferSize = 10 * 1024 * 1024

	// DefaultMaxFrameSize is the incoming frame size limit; a larger frame
	// terminates the transport.
	DefaultMaxFrameSize int64 = 100 * 1024 * 1024
)

// Transport is the framed, bidirectional message channel to the browser.
type Transport interface {
	Read(*cdp.Message) error
	Write(*cdp.Message) error
	io.Closer
}

// Conn implements Transport over a gorilla/websocket connection.
type Conn struct {
	*websocket.Conn

	// maxFrameSize caps a single incoming frame.
	maxFrameSize int64

	// buf helps us reuse space when reading from the websocket.
	buf bytes.Buffer

	// reuse the easyjson structs to avoid allocs per Read/Write.
	lexer  jlexer.Lexer
	writer jwriter.Writer

	dbgf func(string, ...interface{})
}

// DialContext dials the specified websocket URL.
func DialContext(ctx context.Context, urlstr string, opts ...DialOption) (*Conn, error) {
	d := &websocket.Dialer{
		ReadBufferSize:  DefaultReadBufferSize,
		WriteBufferSize: DefaultWriteBufferSize,
	}

	conn, _, err := d.DialContext(ctx, urlstr, nil)
	if err != nil {
		return nil, err
	}

	c := &Conn{
		Conn:         conn,
		maxFrameSize: DefaultMaxFrameSize,
	}
	for _, o := range opts {
		o(c)
	}
	c.Conn.SetReadLimit(c.maxFrameSize)

	return c, nil
}

func (c *Conn) bufReadAll(r io.Reader) ([]byte, error) {
	c.buf.Reset()
	_, err := c.buf.ReadFrom(r)
	return c.buf.Bytes(), err
}

// Read reads the next message from the websocket and unmarshals it into msg.
// Closure is terminal: any error returned here means the transport is dead.
func (c *Conn) Read(msg *cdp.Message) error {
	typ, r, err := c.NextReader()
	if err == websocket.ErrReadLimit {
		return ErrFrameTooLarge
	}
	if err != nil {
		return err
	}
	if typ != websocket.TextMessage {
		return ErrInvalidWebsocketMessage
	}

	// Unmarshal via a bytes.Buffer to reuse its space across reads.
	buf, err := c.bufReadAll(r)
	if err == websocket.ErrReadLimit {
		return ErrFrameTooLarge
	}
	if err != nil {
		return err
	}
	if c.dbgf != nil {
		c.dbgf("<- %s", buf)
	}

	// Reuse the easyjson lexer.
	c.lexer = jlexer.Lexer{Data: buf}
	msg.UnmarshalEasyJSON(&c.lexer)
	if err := c.lexer.Error(); err != nil {
		return err
	}

	// bufReadAll uses the buffer space directly, and the raw payloads
	// alias it, so copy them out to prevent data races with the next Read.
	msg.Result = append([]byte{}, msg.Result...)
	msg.Params = append([]byte{}, msg.Params...)
	if msg.Error != nil && msg.Error.Data != nil {
		msg.Error.Data = append([]byte{}, msg.Error.Data...)
	}
	return nil
}

// Write marshals msg and writes it as a single text frame.
func (c *Conn) Write(msg *cdp.Message) error {
	w, err := c.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	defer w.Close()

	// Reuse the easyjson writer.
	c.writer = jwriter.Writer{}
	msg.MarshalEasyJSON(&c.writer)
	if err := c.writer.Error; err != nil {
		return err
	}

	// BuildBytes consumes the buffer, so we can't use it as well as DumpTo.
	if c.dbgf != nil {
		buf, _ := c.writer.BuildBytes()
		c.dbgf("-> %s", buf)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	} else {
		if _, err := c.writer.DumpTo(w); err != nil {
			return err
		}
	}
	return w.Close()
}

// ForceIP forces the host component in urlstr to be an IP address.
//
// Since Chrome 66+, Chrome DevTools Protocol clients connecting to a browser
// must send the "Host:" header as either an IP address, or "localhost".
func ForceIP(urlstr string) string {
	if i := strings.Index(urlstr, "://"); i != -1 {
		scheme := urlstr[:i+3]
		host, port, path := urlstr[len(scheme):], "", ""
		if i := strings.Index(host, "/"); i != -1 {
			host, path = host[:i], host[i:]
		}
		if i := strings.Index(host, ":"); i != -1 {
			host, port = host[:i], host[i:]
		}
		if addr, err := net.ResolveIPAddr("ip", host); err == nil {
			urlstr = scheme + addr.IP.String() + port + path
		}
	}
	return urlstr
}

// DialOption is a dial option.
type DialOption func(*Conn)

// WithConnDebugf is a dial option to set a protocol logger.
func WithConnDebugf(f func(string, ...interface{})) DialOption {
	return func(c *Conn) {
		c.dbgf = f
	}
}

// WithMaxFrameSize is a dial option to cap the incoming frame size.
func WithMaxFrameSize(n int64) DialOption {
	return func(c *Conn) {
		c.maxFrameSize = n
	}
}
