package protocol

import (
	"encoding/json"
	"fmt"
)

// Version is the JSON-RPC protocol version spoken on both channels.
const Version = "2.0"

// Reserved JSON-RPC error codes, plus the application-defined range used
// for bridge and tool errors.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// Application range.
	CodeToolFailed        = -32000
	CodeWorkerUnavailable = -32001
	CodeTimeout           = -32002
	CodeWorkerStartup     = -32003
	CodeCancelled         = -32004
)

// Kind discriminates the three message shapes.
type Kind int

const (
	KindRequest Kind = iota + 1
	KindResponse
	KindNotification
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindNotification:
		return "notification"
	default:
		return "invalid"
	}
}

// NullID is the id used when answering a message whose real id cannot be
// trusted (e.g. a line that failed to parse).
var NullID = json.RawMessage("null")

// ErrorObject is the wire error shape. It implements error so handlers can
// return domain errors as first-class values that cross the channel intact.
type ErrorObject struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *ErrorObject) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Errorf builds an ErrorObject with a formatted message.
func Errorf(code int, format string, args ...interface{}) *ErrorObject {
	return &ErrorObject{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Message is one decoded frame. Exactly one Kind is set; fields not
// belonging to that kind are zero.
//
// ID is kept as raw JSON so the server role can echo ids verbatim whatever
// their JSON type; the client role issues integer ids and reads them back
// with IDInt64.
type Message struct {
	Kind   Kind
	ID     json.RawMessage
	Method string
	Params json.RawMessage
	Result json.RawMessage
	Err    *ErrorObject
}

// wireMessage is the single JSON shape all three kinds share on the wire.
type wireMessage struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// NewRequest builds a Request with an integer id.
func NewRequest(id int64, method string, params json.RawMessage) Message {
	return Message{
		Kind:   KindRequest,
		ID:     json.RawMessage(fmt.Sprintf("%d", id)),
		Method: method,
		Params: params,
	}
}

// NewResult builds a success Response echoing id.
func NewResult(id json.RawMessage, result json.RawMessage) Message {
	return Message{Kind: KindResponse, ID: echoID(id), Result: result}
}

// NewError builds an error Response echoing id.
func NewError(id json.RawMessage, errObj *ErrorObject) Message {
	return Message{Kind: KindResponse, ID: echoID(id), Err: errObj}
}

func echoID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return NullID
	}
	return id
}

// IDInt64 reports the message id as an int64, when it is one.
func (m Message) IDInt64() (int64, bool) {
	var id int64
	if err := json.Unmarshal(m.ID, &id); err != nil {
		return 0, false
	}
	return id, true
}

// IsNullID reports whether the id is absent or JSON null.
func (m Message) IsNullID() bool {
	return len(m.ID) == 0 || string(m.ID) == "null"
}

// Parse classifies one line of JSON into a Message.
//
// Classification follows the field shape, not an explicit tag:
//   - method present, id present   -> Request
//   - method present, id absent    -> Notification
//   - result or error present      -> Response (a null id is allowed; the
//     worker answers unparseable requests with id null)
//
// Anything else is malformed.
func Parse(line []byte) (Message, error) {
	var w wireMessage
	if err := json.Unmarshal(line, &w); err != nil {
		return Message{}, err
	}

	hasID := len(w.ID) != 0 && string(w.ID) != "null"

	switch {
	case w.Method != "" && hasID:
		return Message{Kind: KindRequest, ID: w.ID, Method: w.Method, Params: w.Params}, nil
	case w.Method != "":
		return Message{Kind: KindNotification, Method: w.Method, Params: w.Params}, nil
	case w.Result != nil || w.Error != nil:
		return Message{Kind: KindResponse, ID: echoID(w.ID), Result: w.Result, Err: w.Error}, nil
	default:
		return Message{}, fmt.Errorf("message has neither method nor result/error")
	}
}

// MarshalJSON serializes the message back to the shared wire shape.
func (m Message) MarshalJSON() ([]byte, error) {
	w := wireMessage{JSONRPC: Version}
	switch m.Kind {
	case KindRequest:
		w.ID = m.ID
		w.Method = m.Method
		w.Params = m.Params
	case KindNotification:
		w.Method = m.Method
		w.Params = m.Params
	case KindResponse:
		w.ID = echoID(m.ID)
		if m.Err != nil {
			w.Error = m.Err
		} else {
			w.Result = m.Result
			if w.Result == nil {
				w.Result = json.RawMessage("null")
			}
		}
	default:
		return nil, fmt.Errorf("cannot marshal message of kind %v", m.Kind)
	}
	return json.Marshal(w)
}
