// Package dom provides the typed commands and events of the DOM domain.
package dom

import (
	"context"

	"github.com/mattsse/chromiumoxide/cdp"
	"github.com/mattsse/chromiumoxide/cdp/runtime"
)

// DOM domain command methods.
const (
	CommandEnable                 = "DOM.enable"
	CommandDisable                = "DOM.disable"
	CommandGetDocument            = "DOM.getDocument"
	CommandQuerySelector          = "DOM.querySelector"
	CommandQuerySelectorAll       = "DOM.querySelectorAll"
	CommandDescribeNode           = "DOM.describeNode"
	CommandResolveNode            = "DOM.resolveNode"
	CommandRequestNode            = "DOM.requestNode"
	CommandGetBoxModel            = "DOM.getBoxModel"
	CommandScrollIntoViewIfNeeded = "DOM.scrollIntoViewIfNeeded"
	CommandFocus                  = "DOM.focus"
	CommandGetOuterHTML           = "DOM.getOuterHTML"
	CommandGetAttributes          = "DOM.getAttributes"
	CommandSetAttributeValue      = "DOM.setAttributeValue"
)

// DOM domain event methods.
const (
	MethodDocumentUpdated cdp.MethodType = "DOM.documentUpdated"
	MethodSetChildNodes   cdp.MethodType = "DOM.setChildNodes"
)

// Node is a DOM node as reported by the browser.
type Node struct {
	NodeID         cdp.NodeID        `json:"nodeId"`
	ParentID       cdp.NodeID        `json:"parentId,omitempty"`
	BackendNodeID  cdp.BackendNodeID `json:"backendNodeId"`
	NodeType       int64             `json:"nodeType"`
	NodeName       string            `json:"nodeName"`
	LocalName      string            `json:"localName"`
	NodeValue      string            `json:"nodeValue"`
	ChildNodeCount int64             `json:"childNodeCount,omitempty"`
	Children       []*Node           `json:"children,omitempty"`
	Attributes     []string          `json:"attributes,omitempty"`
	DocumentURL    string            `json:"documentURL,omitempty"`
	FrameID        cdp.FrameID       `json:"frameId,omitempty"`
}

// AttributeValue returns the value of the named attribute, if present.
func (n *Node) AttributeValue(name string) (string, bool) {
	for i := 0; i+1 < len(n.Attributes); i += 2 {
		if n.Attributes[i] == name {
			return n.Attributes[i+1], true
		}
	}
	return "", false
}

// Quad is a flat list of x,y vertex coordinates.
type Quad []float64

// BoxModel holds the box model layout of a node.
type BoxModel struct {
	Content Quad  `json:"content"`
	Padding Quad  `json:"padding"`
	Border  Quad  `json:"border"`
	Margin  Quad  `json:"margin"`
	Width   int64 `json:"width"`
	Height  int64 `json:"height"`
}

// EnableParams enables DOM domain notifications.
type EnableParams struct{}

// Enable enables DOM agent notifications.
func Enable() *EnableParams { return &EnableParams{} }

// Do executes DOM.enable.
func (p *EnableParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandEnable, nil, nil)
}

// DisableParams disables DOM domain notifications.
type DisableParams struct{}

// Disable disables DOM agent notifications.
func Disable() *DisableParams { return &DisableParams{} }

// Do executes DOM.disable.
func (p *DisableParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandDisable, nil, nil)
}

// GetDocumentParams retrieves the document root node.
type GetDocumentParams struct {
	Depth  int64 `json:"depth,omitempty"`
	Pierce bool  `json:"pierce,omitempty"`
}

// GetDocument returns the document node.
func GetDocument() *GetDocumentParams { return &GetDocumentParams{} }

// WithDepth sets the depth of the retrieved subtree (-1 for the entire tree).
func (p *GetDocumentParams) WithDepth(depth int64) *GetDocumentParams {
	p.Depth = depth
	return p
}

// GetDocumentReturns holds the document root.
type GetDocumentReturns struct {
	Root *Node `json:"root"`
}

// Do executes DOM.getDocument.
func (p *GetDocumentParams) Do(ctx context.Context) (*Node, error) {
	var res GetDocumentReturns
	if err := cdp.Execute(ctx, CommandGetDocument, p, &res); err != nil {
		return nil, err
	}
	return res.Root, nil
}

// QuerySelectorParams runs a selector query against a node.
type QuerySelectorParams struct {
	NodeID   cdp.NodeID `json:"nodeId"`
	Selector string     `json:"selector"`
}

// QuerySelector queries for the first descendant matching the selector.
func QuerySelector(nodeID cdp.NodeID, selector string) *QuerySelectorParams {
	return &QuerySelectorParams{NodeID: nodeID, Selector: selector}
}

// QuerySelectorReturns holds the matched node id.
type QuerySelectorReturns struct {
	NodeID cdp.NodeID `json:"nodeId"`
}

// Do executes DOM.querySelector.
func (p *QuerySelectorParams) Do(ctx context.Context) (cdp.NodeID, error) {
	var res QuerySelectorReturns
	if err := cdp.Execute(ctx, CommandQuerySelector, p, &res); err != nil {
		return 0, err
	}
	return res.NodeID, nil
}

// QuerySelectorAllParams runs a selector query for all matches.
type QuerySelectorAllParams struct {
	NodeID   cdp.NodeID `json:"nodeId"`
	Selector string     `json:"selector"`
}

// QuerySelectorAll queries for all descendants matching the selector.
func QuerySelectorAll(nodeID cdp.NodeID, selector string) *QuerySelectorAllParams {
	return &QuerySelectorAllParams{NodeID: nodeID, Selector: selector}
}

// QuerySelectorAllReturns holds the matched node ids.
type QuerySelectorAllReturns struct {
	NodeIDs []cdp.NodeID `json:"nodeIds"`
}

// Do executes DOM.querySelectorAll.
func (p *QuerySelectorAllParams) Do(ctx context.Context) ([]cdp.NodeID, error) {
	var res QuerySelectorAllReturns
	if err := cdp.Execute(ctx, CommandQuerySelectorAll, p, &res); err != nil {
		return nil, err
	}
	return res.NodeIDs, nil
}

// DescribeNodeParams describes a node without pushing it to the front-end.
type DescribeNodeParams struct {
	NodeID        cdp.NodeID         `json:"nodeId,omitempty"`
	BackendNodeID cdp.BackendNodeID  `json:"backendNodeId,omitempty"`
	ObjectID      cdp.RemoteObjectID `json:"objectId,omitempty"`
	Depth         int64              `json:"depth,omitempty"`
}

// DescribeNode describes the given node.
func DescribeNode() *DescribeNodeParams { return &DescribeNodeParams{} }

// WithNodeID identifies the node by node id.
func (p *DescribeNodeParams) WithNodeID(id cdp.NodeID) *DescribeNodeParams {
	p.NodeID = id
	return p
}

// WithBackendNodeID identifies the node by backend node id.
func (p *DescribeNodeParams) WithBackendNodeID(id cdp.BackendNodeID) *DescribeNodeParams {
	p.BackendNodeID = id
	return p
}

// DescribeNodeReturns holds the node description.
type DescribeNodeReturns struct {
	Node *Node `json:"node"`
}

// Do executes DOM.describeNode.
func (p *DescribeNodeParams) Do(ctx context.Context) (*Node, error) {
	var res DescribeNodeReturns
	if err := cdp.Execute(ctx, CommandDescribeNode, p, &res); err != nil {
		return nil, err
	}
	return res.Node, nil
}

// ResolveNodeParams resolves a node to a remote JavaScript object.
type ResolveNodeParams struct {
	NodeID             cdp.NodeID             `json:"nodeId,omitempty"`
	BackendNodeID      cdp.BackendNodeID      `json:"backendNodeId,omitempty"`
	ExecutionContextID cdp.ExecutionContextID `json:"executionContextId,omitempty"`
}

// ResolveNode resolves the node into a remote object reference.
func ResolveNode() *ResolveNodeParams { return &ResolveNodeParams{} }

// WithNodeID identifies the node by node id.
func (p *ResolveNodeParams) WithNodeID(id cdp.NodeID) *ResolveNodeParams {
	p.NodeID = id
	return p
}

// WithBackendNodeID identifies the node by backend node id.
func (p *ResolveNodeParams) WithBackendNodeID(id cdp.BackendNodeID) *ResolveNodeParams {
	p.BackendNodeID = id
	return p
}

// ResolveNodeReturns holds the resolved object.
type ResolveNodeReturns struct {
	Object *runtime.RemoteObject `json:"object"`
}

// Do executes DOM.resolveNode.
func (p *ResolveNodeParams) Do(ctx context.Context) (*runtime.RemoteObject, error) {
	var res ResolveNodeReturns
	if err := cdp.Execute(ctx, CommandResolveNode, p, &res); err != nil {
		return nil, err
	}
	return res.Object, nil
}

// RequestNodeParams requests the node id for a remote object.
type RequestNodeParams struct {
	ObjectID cdp.RemoteObjectID `json:"objectId"`
}

// RequestNode requests the front-end node id for the remote object.
func RequestNode(objectID cdp.RemoteObjectID) *RequestNodeParams {
	return &RequestNodeParams{ObjectID: objectID}
}

// RequestNodeReturns holds the node id.
type RequestNodeReturns struct {
	NodeID cdp.NodeID `json:"nodeId"`
}

// Do executes DOM.requestNode.
func (p *RequestNodeParams) Do(ctx context.Context) (cdp.NodeID, error) {
	var res RequestNodeReturns
	if err := cdp.Execute(ctx, CommandRequestNode, p, &res); err != nil {
		return 0, err
	}
	return res.NodeID, nil
}

// GetBoxModelParams retrieves the box model of a node.
type GetBoxModelParams struct {
	NodeID        cdp.NodeID         `json:"nodeId,omitempty"`
	BackendNodeID cdp.BackendNodeID  `json:"backendNodeId,omitempty"`
	ObjectID      cdp.RemoteObjectID `json:"objectId,omitempty"`
}

// GetBoxModel returns the box model of the given node.
func GetBoxModel() *GetBoxModelParams { return &GetBoxModelParams{} }

// WithNodeID identifies the node by node id.
func (p *GetBoxModelParams) WithNodeID(id cdp.NodeID) *GetBoxModelParams {
	p.NodeID = id
	return p
}

// WithBackendNodeID identifies the node by backend node id.
func (p *GetBoxModelParams) WithBackendNodeID(id cdp.BackendNodeID) *GetBoxModelParams {
	p.BackendNodeID = id
	return p
}

// GetBoxModelReturns holds the box model.
type GetBoxModelReturns struct {
	Model *BoxModel `json:"model"`
}

// Do executes DOM.getBoxModel.
func (p *GetBoxModelParams) Do(ctx context.Context) (*BoxModel, error) {
	var res GetBoxModelReturns
	if err := cdp.Execute(ctx, CommandGetBoxModel, p, &res); err != nil {
		return nil, err
	}
	return res.Model, nil
}

// ScrollIntoViewIfNeededParams scrolls a node into view if needed.
type ScrollIntoViewIfNeededParams struct {
	NodeID        cdp.NodeID         `json:"nodeId,omitempty"`
	BackendNodeID cdp.BackendNodeID  `json:"backendNodeId,omitempty"`
	ObjectID      cdp.RemoteObjectID `json:"objectId,omitempty"`
}

// ScrollIntoViewIfNeeded scrolls the node into view.
func ScrollIntoViewIfNeeded() *ScrollIntoViewIfNeededParams {
	return &ScrollIntoViewIfNeededParams{}
}

// WithNodeID identifies the node by node id.
func (p *ScrollIntoViewIfNeededParams) WithNodeID(id cdp.NodeID) *ScrollIntoViewIfNeededParams {
	p.NodeID = id
	return p
}

// WithBackendNodeID identifies the node by backend node id.
func (p *ScrollIntoViewIfNeededParams) WithBackendNodeID(id cdp.BackendNodeID) *ScrollIntoViewIfNeededParams {
	p.BackendNodeID = id
	return p
}

// Do executes DOM.scrollIntoViewIfNeeded.
func (p *ScrollIntoViewIfNeededParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandScrollIntoViewIfNeeded, p, nil)
}

// FocusParams focuses a node.
type FocusParams struct {
	NodeID        cdp.NodeID        `json:"nodeId,omitempty"`
	BackendNodeID cdp.BackendNodeID `json:"backendNodeId,omitempty"`
}

// Focus focuses the given node.
func Focus() *FocusParams { return &FocusParams{} }

// WithNodeID identifies the node by node id.
func (p *FocusParams) WithNodeID(id cdp.NodeID) *FocusParams {
	p.NodeID = id
	return p
}

// WithBackendNodeID identifies the node by backend node id.
func (p *FocusParams) WithBackendNodeID(id cdp.BackendNodeID) *FocusParams {
	p.BackendNodeID = id
	return p
}

// Do executes DOM.focus.
func (p *FocusParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandFocus, p, nil)
}

// GetOuterHTMLParams retrieves a node's outer HTML.
type GetOuterHTMLParams struct {
	NodeID        cdp.NodeID        `json:"nodeId,omitempty"`
	BackendNodeID cdp.BackendNodeID `json:"backendNodeId,omitempty"`
}

// GetOuterHTML returns the node's outer HTML markup.
func GetOuterHTML() *GetOuterHTMLParams { return &GetOuterHTMLParams{} }

// WithNodeID identifies the node by node id.
func (p *GetOuterHTMLParams) WithNodeID(id cdp.NodeID) *GetOuterHTMLParams {
	p.NodeID = id
	return p
}

// WithBackendNodeID identifies the node by backend node id.
func (p *GetOuterHTMLParams) WithBackendNodeID(id cdp.BackendNodeID) *GetOuterHTMLParams {
	p.BackendNodeID = id
	return p
}

// GetOuterHTMLReturns holds the markup.
type GetOuterHTMLReturns struct {
	OuterHTML string `json:"outerHTML"`
}

// Do executes DOM.getOuterHTML.
func (p *GetOuterHTMLParams) Do(ctx context.Context) (string, error) {
	var res GetOuterHTMLReturns
	if err := cdp.Execute(ctx, CommandGetOuterHTML, p, &res); err != nil {
		return "", err
	}
	return res.OuterHTML, nil
}

// GetAttributesParams retrieves a node's attributes.
type GetAttributesParams struct {
	NodeID cdp.NodeID `json:"nodeId"`
}

// GetAttributes returns the node's attributes as a flat name,value list.
func GetAttributes(nodeID cdp.NodeID) *GetAttributesParams {
	return &GetAttributesParams{NodeID: nodeID}
}

// GetAttributesReturns holds the interleaved attribute list.
type GetAttributesReturns struct {
	Attributes []string `json:"attributes"`
}

// Do executes DOM.getAttributes.
func (p *GetAttributesParams) Do(ctx context.Context) ([]string, error) {
	var res GetAttributesReturns
	if err := cdp.Execute(ctx, CommandGetAttributes, p, &res); err != nil {
		return nil, err
	}
	return res.Attributes, nil
}

// SetAttributeValueParams sets an attribute on a node.
type SetAttributeValueParams struct {
	NodeID cdp.NodeID `json:"nodeId"`
	Name   string     `json:"name"`
	Value  string     `json:"value"`
}

// SetAttributeValue sets the attribute on the given node.
func SetAttributeValue(nodeID cdp.NodeID, name, value string) *SetAttributeValueParams {
	return &SetAttributeValueParams{NodeID: nodeID, Name: name, Value: value}
}

// Do executes DOM.setAttributeValue.
func (p *SetAttributeValueParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandSetAttributeValue, p, nil)
}

// EventDocumentUpdated is issued when the whole document was invalidated.
type EventDocumentUpdated struct{}

// EventSetChildNodes is issued when child nodes are reported to the client.
type EventSetChildNodes struct {
	ParentID cdp.NodeID `json:"parentId"`
	Nodes    []*Node    `json:"nodes"`
}
