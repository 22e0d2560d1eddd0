package cdp

import (
	"fmt"

	"github.com/mailru/easyjson"
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
)

// Message is a single protocol frame: a request (ID+Method), a response
// (ID+Result or Error), or an event (Method+Params). SessionID scopes the
// frame to a target session; empty means browser-level.
type Message struct {
	ID        int64               `json:"id,omitempty"`
	SessionID SessionID           `json:"sessionId,omitempty"`
	Method    MethodType          `json:"method,omitempty"`
	Params    easyjson.RawMessage `json:"params,omitempty"`
	Result    easyjson.RawMessage `json:"result,omitempty"`
	Error     *Error              `json:"error,omitempty"`
}

// Error is a protocol error reported by the browser in a response frame.
type Error struct {
	Code    int64               `json:"code"`
	Message string              `json:"message"`
	Data    easyjson.RawMessage `json:"data,omitempty"`
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// MarshalEasyJSON satisfies easyjson.Marshaler.
func (m Message) MarshalEasyJSON(out *jwriter.Writer) {
	out.RawByte('{')
	first := true
	if m.ID != 0 {
		first = false
		out.RawString(`"id":`)
		out.Int64(m.ID)
	}
	if m.SessionID != "" {
		if !first {
			out.RawByte(',')
		}
		first = false
		out.RawString(`"sessionId":`)
		out.String(string(m.SessionID))
	}
	if m.Method != "" {
		if !first {
			out.RawByte(',')
		}
		first = false
		out.RawString(`"method":`)
		out.String(string(m.Method))
	}
	if len(m.Params) > 0 {
		if !first {
			out.RawByte(',')
		}
		first = false
		out.RawString(`"params":`)
		out.Raw(m.Params, nil)
	}
	if len(m.Result) > 0 {
		if !first {
			out.RawByte(',')
		}
		first = false
		out.RawString(`"result":`)
		out.Raw(m.Result, nil)
	}
	if m.Error != nil {
		if !first {
			out.RawByte(',')
		}
		out.RawString(`"error":`)
		m.Error.MarshalEasyJSON(out)
	}
	out.RawByte('}')
}

// UnmarshalEasyJSON satisfies easyjson.Unmarshaler.
func (m *Message) UnmarshalEasyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "id":
			m.ID = in.Int64()
		case "sessionId":
			m.SessionID = SessionID(in.String())
		case "method":
			m.Method = MethodType(in.String())
		case "params":
			m.Params = easyjson.RawMessage(in.Raw())
		case "result":
			m.Result = easyjson.RawMessage(in.Raw())
		case "error":
			m.Error = new(Error)
			m.Error.UnmarshalEasyJSON(in)
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

// MarshalEasyJSON satisfies easyjson.Marshaler.
func (e Error) MarshalEasyJSON(out *jwriter.Writer) {
	out.RawString(`{"code":`)
	out.Int64(e.Code)
	out.RawString(`,"message":`)
	out.String(e.Message)
	if len(e.Data) > 0 {
		out.RawString(`,"data":`)
		out.Raw(e.Data, nil)
	}
	out.RawByte('}')
}

// UnmarshalEasyJSON satisfies easyjson.Unmarshaler.
func (e *Error) UnmarshalEasyJSON(in *jlexer.Lexer) {
	if in.IsNull() {
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "code":
			e.Code = in.Int64()
		case "message":
			e.Message = in.String()
		case "data":
			e.Data = easyjson.RawMessage(in.Raw())
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
}
