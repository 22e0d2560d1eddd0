// Package chromiumoxide is a high level Chrome DevTools Protocol client that
// drives Chromium-family browsers: it launches or attaches to a browser
// process, multiplexes typed commands and events over a single websocket, and
// exposes Browser, Page and Element handles for navigation, evaluation and
// input.
//
// A single handler goroutine owns the websocket and all protocol state;
// callers interact with it through Browser, Page and Element handles from any
// goroutine.
package chromiumoxide
