// Package runtime provides the typed commands and events of the Runtime
// domain: script evaluation and execution context tracking.
package runtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mattsse/chromiumoxide/cdp"
)

// Runtime domain command methods.
const (
	CommandEnable         = "Runtime.enable"
	CommandDisable        = "Runtime.disable"
	CommandEvaluate       = "Runtime.evaluate"
	CommandCallFunctionOn = "Runtime.callFunctionOn"
	CommandReleaseObject  = "Runtime.releaseObject"
	CommandGetProperties  = "Runtime.getProperties"
)

// Runtime domain event methods.
const (
	MethodExecutionContextCreated   cdp.MethodType = "Runtime.executionContextCreated"
	MethodExecutionContextDestroyed cdp.MethodType = "Runtime.executionContextDestroyed"
	MethodExecutionContextsCleared  cdp.MethodType = "Runtime.executionContextsCleared"
	MethodConsoleAPICalled          cdp.MethodType = "Runtime.consoleAPICalled"
	MethodExceptionThrown           cdp.MethodType = "Runtime.exceptionThrown"
)

// RemoteObject is a mirror of a JavaScript value: either a primitive carried
// by value, or a reference to a browser-side object.
type RemoteObject struct {
	Type                string             `json:"type"`
	Subtype             string             `json:"subtype,omitempty"`
	ClassName           string             `json:"className,omitempty"`
	Value               json.RawMessage    `json:"value,omitempty"`
	UnserializableValue string             `json:"unserializableValue,omitempty"`
	Description         string             `json:"description,omitempty"`
	ObjectID            cdp.RemoteObjectID `json:"objectId,omitempty"`
}

// CallArgument is one argument for CallFunctionOn, either a plain value or a
// remote object reference.
type CallArgument struct {
	Value    json.RawMessage    `json:"value,omitempty"`
	ObjectID cdp.RemoteObjectID `json:"objectId,omitempty"`
}

// ExecutionContextDescription describes a created execution context.
type ExecutionContextDescription struct {
	ID      cdp.ExecutionContextID `json:"id"`
	Origin  string                 `json:"origin"`
	Name    string                 `json:"name"`
	AuxData json.RawMessage        `json:"auxData,omitempty"`
}

// ExceptionDetails describes a thrown JavaScript exception.
type ExceptionDetails struct {
	ExceptionID  int64         `json:"exceptionId"`
	Text         string        `json:"text"`
	LineNumber   int64         `json:"lineNumber"`
	ColumnNumber int64         `json:"columnNumber"`
	ScriptID     string        `json:"scriptId,omitempty"`
	URL          string        `json:"url,omitempty"`
	Exception    *RemoteObject `json:"exception,omitempty"`
}

// Error satisfies the error interface.
func (e *ExceptionDetails) Error() string {
	desc := e.Text
	if e.Exception != nil && e.Exception.Description != "" {
		desc = e.Exception.Description
	}
	return fmt.Sprintf("exception %q (%d:%d)", desc, e.LineNumber, e.ColumnNumber)
}

// EnableParams enables runtime domain notifications.
type EnableParams struct{}

// Enable enables reporting of execution context creation.
func Enable() *EnableParams { return &EnableParams{} }

// Do executes Runtime.enable.
func (p *EnableParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandEnable, nil, nil)
}

// DisableParams disables runtime domain notifications.
type DisableParams struct{}

// Disable disables runtime domain notifications.
func Disable() *DisableParams { return &DisableParams{} }

// Do executes Runtime.disable.
func (p *DisableParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandDisable, nil, nil)
}

// EvaluateParams evaluates an expression on the global object.
type EvaluateParams struct {
	Expression            string                 `json:"expression"`
	ObjectGroup           string                 `json:"objectGroup,omitempty"`
	IncludeCommandLineAPI bool                   `json:"includeCommandLineAPI,omitempty"`
	Silent                bool                   `json:"silent,omitempty"`
	ContextID             cdp.ExecutionContextID `json:"contextId,omitempty"`
	ReturnByValue         bool                   `json:"returnByValue,omitempty"`
	AwaitPromise          bool                   `json:"awaitPromise,omitempty"`
	UserGesture           bool                   `json:"userGesture,omitempty"`
}

// Evaluate evaluates the expression in the page's main world.
func Evaluate(expression string) *EvaluateParams {
	return &EvaluateParams{Expression: expression}
}

// WithReturnByValue requests a JSON-encoded result instead of a reference.
func (p *EvaluateParams) WithReturnByValue(returnByValue bool) *EvaluateParams {
	p.ReturnByValue = returnByValue
	return p
}

// WithAwaitPromise resolves a returned promise before replying.
func (p *EvaluateParams) WithAwaitPromise(await bool) *EvaluateParams {
	p.AwaitPromise = await
	return p
}

// WithContextID evaluates in the given execution context.
func (p *EvaluateParams) WithContextID(id cdp.ExecutionContextID) *EvaluateParams {
	p.ContextID = id
	return p
}

// WithObjectGroup sets the object group for released results.
func (p *EvaluateParams) WithObjectGroup(group string) *EvaluateParams {
	p.ObjectGroup = group
	return p
}

// WithIncludeCommandLineAPI exposes the DevTools command line API.
func (p *EvaluateParams) WithIncludeCommandLineAPI(include bool) *EvaluateParams {
	p.IncludeCommandLineAPI = include
	return p
}

// WithSilent suppresses exception reporting.
func (p *EvaluateParams) WithSilent(silent bool) *EvaluateParams {
	p.Silent = silent
	return p
}

// WithUserGesture treats the evaluation as initiated by the user.
func (p *EvaluateParams) WithUserGesture(gesture bool) *EvaluateParams {
	p.UserGesture = gesture
	return p
}

// EvaluateReturns holds the evaluation result.
type EvaluateReturns struct {
	Result           *RemoteObject     `json:"result"`
	ExceptionDetails *ExceptionDetails `json:"exceptionDetails,omitempty"`
}

// Do executes Runtime.evaluate.
func (p *EvaluateParams) Do(ctx context.Context) (*RemoteObject, *ExceptionDetails, error) {
	var res EvaluateReturns
	if err := cdp.Execute(ctx, CommandEvaluate, p, &res); err != nil {
		return nil, nil, err
	}
	return res.Result, res.ExceptionDetails, nil
}

// CallFunctionOnParams calls a function with a given declaration on a remote
// object or in an execution context.
type CallFunctionOnParams struct {
	FunctionDeclaration string                 `json:"functionDeclaration"`
	ObjectID            cdp.RemoteObjectID     `json:"objectId,omitempty"`
	Arguments           []*CallArgument        `json:"arguments,omitempty"`
	Silent              bool                   `json:"silent,omitempty"`
	ReturnByValue       bool                   `json:"returnByValue,omitempty"`
	UserGesture         bool                   `json:"userGesture,omitempty"`
	AwaitPromise        bool                   `json:"awaitPromise,omitempty"`
	ExecutionContextID  cdp.ExecutionContextID `json:"executionContextId,omitempty"`
}

// CallFunctionOn calls the function declaration.
func CallFunctionOn(declaration string) *CallFunctionOnParams {
	return &CallFunctionOnParams{FunctionDeclaration: declaration}
}

// WithObjectID binds "this" to the given remote object.
func (p *CallFunctionOnParams) WithObjectID(id cdp.RemoteObjectID) *CallFunctionOnParams {
	p.ObjectID = id
	return p
}

// WithExecutionContextID runs the call in the given context.
func (p *CallFunctionOnParams) WithExecutionContextID(id cdp.ExecutionContextID) *CallFunctionOnParams {
	p.ExecutionContextID = id
	return p
}

// WithArguments passes the call arguments.
func (p *CallFunctionOnParams) WithArguments(args []*CallArgument) *CallFunctionOnParams {
	p.Arguments = args
	return p
}

// WithReturnByValue requests a JSON-encoded result instead of a reference.
func (p *CallFunctionOnParams) WithReturnByValue(returnByValue bool) *CallFunctionOnParams {
	p.ReturnByValue = returnByValue
	return p
}

// WithAwaitPromise resolves a returned promise before replying.
func (p *CallFunctionOnParams) WithAwaitPromise(await bool) *CallFunctionOnParams {
	p.AwaitPromise = await
	return p
}

// CallFunctionOnReturns holds the call result.
type CallFunctionOnReturns struct {
	Result           *RemoteObject     `json:"result"`
	ExceptionDetails *ExceptionDetails `json:"exceptionDetails,omitempty"`
}

// Do executes Runtime.callFunctionOn.
func (p *CallFunctionOnParams) Do(ctx context.Context) (*RemoteObject, *ExceptionDetails, error) {
	var res CallFunctionOnReturns
	if err := cdp.Execute(ctx, CommandCallFunctionOn, p, &res); err != nil {
		return nil, nil, err
	}
	return res.Result, res.ExceptionDetails, nil
}

// ReleaseObjectParams releases a remote object.
type ReleaseObjectParams struct {
	ObjectID cdp.RemoteObjectID `json:"objectId"`
}

// ReleaseObject releases the remote object with the given id.
func ReleaseObject(id cdp.RemoteObjectID) *ReleaseObjectParams {
	return &ReleaseObjectParams{ObjectID: id}
}

// Do executes Runtime.releaseObject.
func (p *ReleaseObjectParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandReleaseObject, p, nil)
}

// EventExecutionContextCreated is issued when a new execution context is
// created.
type EventExecutionContextCreated struct {
	Context *ExecutionContextDescription `json:"context"`
}

// EventExecutionContextDestroyed is issued when an execution context is
// destroyed.
type EventExecutionContextDestroyed struct {
	ExecutionContextID cdp.ExecutionContextID `json:"executionContextId"`
}

// EventExecutionContextsCleared is issued when all contexts were cleared.
type EventExecutionContextsCleared struct{}

// EventConsoleAPICalled is issued when a console API was called.
type EventConsoleAPICalled struct {
	Type      string          `json:"type"`
	Args      []*RemoteObject `json:"args"`
	Timestamp float64         `json:"timestamp"`
}

// EventExceptionThrown is issued when an exception was thrown and unhandled.
type EventExceptionThrown struct {
	Timestamp        float64           `json:"timestamp"`
	ExceptionDetails *ExceptionDetails `json:"exceptionDetails"`
}
