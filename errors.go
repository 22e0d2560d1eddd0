package chromiumoxide

// Error is a chromiumoxide error.
type Error string

// Error satisfies the error interface.
func (err Error) Error() string {
	return string(err)
}

// Error types.
const (
	// ErrLaunchFailed is returned when the browser process exits or stays
	// silent before publishing its debugger websocket url.
	ErrLaunchFailed Error = "browser failed to launch"

	// ErrExecutableNotFound is returned when no browser binary could be
	// found on the system.
	ErrExecutableNotFound Error = "no browser executable found"

	// ErrWebSocketConnectFailed is returned when the debugger websocket
	// could not be dialed.
	ErrWebSocketConnectFailed Error = "websocket connect failed"

	// ErrTransportClosed is returned for commands pending or issued after
	// the websocket transport has closed.
	ErrTransportClosed Error = "transport closed"

	// ErrTimeout is returned when a command deadline elapsed before the
	// response arrived.
	ErrTimeout Error = "command timed out"

	// ErrNotAttached is returned for commands issued to a target without a
	// session.
	ErrNotAttached Error = "target not attached"

	// ErrTargetGone is returned when the target was destroyed while a
	// command on it was in flight.
	ErrTargetGone Error = "target destroyed"

	// ErrNoSuchFrame is returned when a frame id is not part of the page's
	// frame tree.
	ErrNoSuchFrame Error = "no such frame"

	// ErrNoSuchExecutionContext is returned when a frame has no execution
	// context registered yet.
	ErrNoSuchExecutionContext Error = "no such execution context"

	// ErrNoSuchElement is returned when a selector matched nothing.
	ErrNoSuchElement Error = "no such element"

	// ErrDeserializeFailed is returned when a response did not match the
	// expected return shape.
	ErrDeserializeFailed Error = "could not deserialize response"

	// ErrCancelled is returned for commands cancelled by the caller.
	ErrCancelled Error = "command cancelled"

	// ErrChannelClosed is returned by EventStream.Next once the stream has
	// been closed with Close.
	ErrChannelClosed Error = "channel closed"

	// ErrBrowserClosed names a closed browser handle. Operations on a closed
	// Browser report ErrTransportClosed; none of them return this value.
	ErrBrowserClosed Error = "browser closed"

	// ErrInvalidWebsocketMessage is returned for non-text websocket frames.
	ErrInvalidWebsocketMessage Error = "invalid websocket message"

	// ErrFrameTooLarge is returned when an incoming frame exceeds the
	// transport's size limit.
	ErrFrameTooLarge Error = "websocket frame exceeds size limit"

	// ErrInvalidBoxModel is returned when a box model has no usable
	// content quad.
	ErrInvalidBoxModel Error = "invalid box model"
)
