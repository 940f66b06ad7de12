package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"flex-designer-be/internal/dto"
	"flex-designer-be/internal/entity"
	"flex-designer-be/internal/pkg/logger"
	"flex-designer-be/internal/repository/contract"
	"flex-designer-be/pkg/events"
	"flex-designer-be/pkg/flex"
	"flex-designer-be/pkg/flex/codec"
	"flex-designer-be/pkg/flex/editor"
	"flex-designer-be/pkg/idgen"
)

const designModule = "DesignService"

// ErrDesignNotFound reports an unknown saved-design id.
var ErrDesignNotFound = errors.New("design not found")

// IDesignService owns the live document, the current selection and the saved
// designs. Calls are serialized; every tree it hands out is immutable and
// stays valid after later edits.
type IDesignService interface {
	Start(ctx context.Context) error
	Current() *dto.DocumentResponse

	NewDocument(ctx context.Context, req *dto.NewDocumentRequest) (*dto.DocumentResponse, error)
	ImportWire(ctx context.Context, data []byte) (*dto.DocumentResponse, error)
	Select(ctx context.Context, nodeID *string) (*dto.DocumentResponse, error)
	AddNode(ctx context.Context, req *dto.AddNodeRequest) (*dto.AddNodeResponse, error)
	UpdateNode(ctx context.Context, id string, props map[string]any) (*dto.DocumentResponse, error)
	DeleteNode(ctx context.Context, id string) (*dto.DocumentResponse, error)
	WireJSON() ([]byte, error)
	Export(altText string) (*dto.ExportDocumentResponse, error)

	ListDesigns(ctx context.Context) []*dto.DesignResponse
	ShowDesign(ctx context.Context, id string) (*dto.DesignResponse, error)
	SaveDesign(ctx context.Context, req *dto.SaveDesignRequest) (*dto.DesignResponse, error)
	LoadDesign(ctx context.Context, id string) (*dto.DocumentResponse, error)
	DuplicateDesign(ctx context.Context, id string) (*dto.DesignResponse, error)
	RenameDesign(ctx context.Context, id string, name string) (*dto.DesignResponse, error)
	DeleteDesign(ctx context.Context, id string) error
}

type designService struct {
	mu sync.Mutex

	root     flex.Container
	selected *string
	revision uint64
	designs  []*entity.Design

	repo      contract.DesignRepository
	publisher IPublisherService
	editor    *editor.Editor
	codec     *codec.Codec
	newID     idgen.Func
	now       func() time.Time
	altText   string
	logger    logger.ILogger
}

// NewDesignService starts with an empty bubble; call Start to load saved
// designs. newID may be nil.
func NewDesignService(
	repo contract.DesignRepository,
	publisher IPublisherService,
	newID idgen.Func,
	altText string,
	log logger.ILogger,
) IDesignService {
	if newID == nil {
		newID = idgen.NewID
	}
	s := &designService{
		repo:      repo,
		publisher: publisher,
		editor:    editor.New(newID),
		codec:     codec.New(newID),
		newID:     newID,
		now:       func() time.Time { return time.Now().UTC() },
		altText:   altText,
		logger:    log,
	}
	s.install(s.emptyDocument(flex.TypeBubble))
	return s
}

// Start loads the saved designs and opens the most recently updated one.
// Damaged records are skipped; a damaged list is treated as empty.
func (s *designService) Start(ctx context.Context) error {
	designs, err := s.repo.LoadAll(ctx)
	if err != nil {
		if !errors.Is(err, contract.ErrPersistenceCorrupt) {
			return fmt.Errorf("load saved designs: %w", err)
		}
		s.logger.Warn(designModule, "Discarding unreadable saved designs", map[string]interface{}{
			"error": err.Error(),
			"kept":  len(designs),
		})
	}

	s.mu.Lock()
	s.designs = designs
	latest := s.latestDesign()
	if latest != nil {
		s.install(s.cloneOrEmpty(latest))
	}
	doc := s.documentLocked()
	s.mu.Unlock()

	s.logger.Info(designModule, "Document store started", map[string]interface{}{"designs": len(designs)})
	s.publish(ctx, events.DocumentReplaced, documentPayload(doc))
	return nil
}

func (s *designService) Current() *dto.DocumentResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentLocked()
}

func (s *designService) NewDocument(ctx context.Context, req *dto.NewDocumentRequest) (*dto.DocumentResponse, error) {
	var root flex.Container
	switch req.Kind {
	case "carousel":
		root = s.emptyDocument(flex.TypeCarousel)
	case "template":
		root = s.fromTemplate(req.TemplateName)
	default:
		root = s.emptyDocument(flex.TypeBubble)
	}
	return s.replaceRoot(ctx, root), nil
}

// ImportWire hydrates a wire tree of external origin and installs it. A tree
// that fails to hydrate leaves the live document as it was.
func (s *designService) ImportWire(ctx context.Context, data []byte) (*dto.DocumentResponse, error) {
	root, err := s.codec.HydrateJSON(data)
	if err != nil {
		s.logger.Error(designModule, "Rejected malformed document", hydrateDetails(err))
		return nil, err
	}
	return s.replaceRoot(ctx, root), nil
}

func (s *designService) Select(ctx context.Context, nodeID *string) (*dto.DocumentResponse, error) {
	s.mu.Lock()
	if nodeID != nil {
		if _, ok := editor.Locate(s.root, *nodeID); !ok {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: node %q", flex.ErrNotFound, *nodeID)
		}
	}
	s.selected = copyID(nodeID)
	doc := s.documentLocked()
	s.mu.Unlock()
	return doc, nil
}

func (s *designService) AddNode(ctx context.Context, req *dto.AddNodeRequest) (*dto.AddNodeResponse, error) {
	tmpl, err := s.nodeTemplate(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	root, added, err := s.editor.Add(s.root, req.ParentId, tmpl, flex.Slot(req.Slot))
	if err != nil {
		s.mu.Unlock()
		s.rejected("add", err, map[string]interface{}{"parent_id": req.ParentId, "node_type": tmpl.NodeType()})
		return nil, err
	}
	s.root = root
	id := added.NodeID()
	s.selected = &id
	s.revision++
	doc := s.documentLocked()
	s.mu.Unlock()

	s.publish(ctx, events.DocumentChanged, documentPayload(doc))
	return &dto.AddNodeResponse{DocumentResponse: *doc, AddedNodeId: id}, nil
}

func (s *designService) UpdateNode(ctx context.Context, id string, props map[string]any) (*dto.DocumentResponse, error) {
	s.mu.Lock()
	root, err := s.editor.UpdateProps(s.root, id, props)
	if err != nil {
		s.mu.Unlock()
		s.rejected("update", err, map[string]interface{}{"node_id": id})
		return nil, err
	}
	s.root = root
	s.revision++
	doc := s.documentLocked()
	s.mu.Unlock()

	s.publish(ctx, events.DocumentChanged, documentPayload(doc))
	return doc, nil
}

func (s *designService) DeleteNode(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	s.mu.Lock()
	root, err := s.editor.Delete(s.root, id)
	if err != nil {
		s.mu.Unlock()
		s.rejected("delete", err, map[string]interface{}{"node_id": id})
		return nil, err
	}
	s.root = root
	// Deleting an ancestor of the selection removes the selection too.
	if s.selected != nil {
		if _, ok := editor.Locate(root, *s.selected); !ok {
			s.selected = nil
		}
	}
	s.revision++
	doc := s.documentLocked()
	s.mu.Unlock()

	s.publish(ctx, events.DocumentChanged, documentPayload(doc))
	return doc, nil
}

// WireJSON encodes the live document without IDs.
func (s *designService) WireJSON() ([]byte, error) {
	s.mu.Lock()
	root := s.root
	s.mu.Unlock()
	return codec.EncodeWire(root)
}

func (s *designService) Export(altText string) (*dto.ExportDocumentResponse, error) {
	s.mu.Lock()
	root := s.root
	s.mu.Unlock()

	if strings.TrimSpace(altText) == "" {
		altText = s.altText
	}
	msg := codec.Wrap(root, altText)
	data, err := codec.EncodeWire(root)
	if err != nil {
		return nil, err
	}
	return &dto.ExportDocumentResponse{FlexMessage: msg, Json: string(data)}, nil
}

// ListDesigns returns saved designs, most recently updated first.
func (s *designService) ListDesigns(ctx context.Context) []*dto.DesignResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := append([]*entity.Design(nil), s.designs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	res := make([]*dto.DesignResponse, 0, len(sorted))
	for _, d := range sorted {
		res = append(res, toDesignResponse(d, false))
	}
	return res
}

func (s *designService) ShowDesign(ctx context.Context, id string) (*dto.DesignResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrDesignNotFound, id)
	}
	return toDesignResponse(s.designs[i], true), nil
}

// SaveDesign snapshots the live document under name. A design with the same
// name, compared case-insensitively, is overwritten in place and keeps its id
// and creation time.
func (s *designService) SaveDesign(ctx context.Context, req *dto.SaveDesignRequest) (*dto.DesignResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: design name is empty", flex.ErrInvalidProperty)
	}

	s.mu.Lock()
	snapshot, err := codec.Clone(s.root)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	now := s.now()
	saved := &entity.Design{
		Id:        s.newID(),
		Name:      name,
		Root:      snapshot,
		Thumbnail: req.Thumbnail,
		CreatedAt: now,
		UpdatedAt: now,
	}
	next := append([]*entity.Design(nil), s.designs...)
	if i := s.indexOfName(name); i >= 0 {
		saved.Id = next[i].Id
		saved.CreatedAt = next[i].CreatedAt
		next[i] = saved
	} else {
		next = append(next, saved)
	}

	if err := s.commitDesigns(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	res := toDesignResponse(saved, false)
	s.mu.Unlock()

	s.publish(ctx, events.DesignSaved, designPayload(saved))
	return res, nil
}

// LoadDesign replaces the live document with a copy of a saved design.
func (s *designService) LoadDesign(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrDesignNotFound, id)
	}
	root := s.cloneOrEmpty(s.designs[i])
	s.mu.Unlock()

	return s.replaceRoot(ctx, root), nil
}

// DuplicateDesign copies a saved design under "<name> (Copy)". The copy's
// tree is hydrated again, so no node ID is shared with the original.
func (s *designService) DuplicateDesign(ctx context.Context, id string) (*dto.DesignResponse, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrDesignNotFound, id)
	}
	original := s.designs[i]
	root, err := s.codec.Hydrate(original.Root)
	if err != nil {
		s.mu.Unlock()
		s.logger.Error(designModule, "Failed to duplicate design", hydrateDetails(err))
		return nil, err
	}

	now := s.now()
	dup := &entity.Design{
		Id:        s.newID(),
		Name:      original.Name + " (Copy)",
		Root:      root,
		Thumbnail: original.Thumbnail,
		CreatedAt: now,
		UpdatedAt: now,
	}
	next := append(append([]*entity.Design(nil), s.designs...), dup)
	if err := s.commitDesigns(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	res := toDesignResponse(dup, false)
	s.mu.Unlock()

	s.publish(ctx, events.DesignDuplicated, designPayload(dup))
	return res, nil
}

func (s *designService) RenameDesign(ctx context.Context, id string, name string) (*dto.DesignResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: design name is empty", flex.ErrInvalidProperty)
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrDesignNotFound, id)
	}
	renamed := *s.designs[i]
	renamed.Name = name
	renamed.UpdatedAt = s.now()

	next := append([]*entity.Design(nil), s.designs...)
	next[i] = &renamed
	if err := s.commitDesigns(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	res := toDesignResponse(&renamed, false)
	s.mu.Unlock()

	s.publish(ctx, events.DesignRenamed, designPayload(&renamed))
	return res, nil
}

func (s *designService) DeleteDesign(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDesignNotFound, id)
	}
	removed := s.designs[i]
	next := make([]*entity.Design, 0, len(s.designs)-1)
	next = append(next, s.designs[:i]...)
	next = append(next, s.designs[i+1:]...)
	if err := s.commitDesigns(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.publish(ctx, events.DesignDeleted, designPayload(removed))
	return nil
}

// commitDesigns persists next and adopts it only once the write succeeded.
// Callers hold mu.
func (s *designService) commitDesigns(ctx context.Context, next []*entity.Design) error {
	if err := s.repo.SaveAll(ctx, next); err != nil {
		s.logger.Error(designModule, "Failed to persist saved designs", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("persist designs: %w", err)
	}
	s.designs = next
	return nil
}

func (s *designService) replaceRoot(ctx context.Context, root flex.Container) *dto.DocumentResponse {
	s.mu.Lock()
	s.install(root)
	doc := s.documentLocked()
	s.mu.Unlock()

	s.publish(ctx, events.DocumentReplaced, documentPayload(doc))
	return doc
}

// install makes root the live document and selects it. Callers hold mu.
func (s *designService) install(root flex.Container) {
	s.root = root
	id := root.NodeID()
	s.selected = &id
	s.revision++
}

func (s *designService) documentLocked() *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Root:           s.root,
		SelectedNodeId: copyID(s.selected),
		Revision:       s.revision,
	}
}

// emptyDocument hydrates a placeholder document. The placeholders are
// static, so hydration only fails on a programming error.
func (s *designService) emptyDocument(kind flex.Type) flex.Container {
	var tmpl flex.Container = flex.EmptyBubble()
	if kind == flex.TypeCarousel {
		tmpl = flex.EmptyCarousel()
	}
	root, err := s.codec.Hydrate(tmpl)
	if err != nil {
		panic(fmt.Sprintf("empty %s does not hydrate: %v", kind, err))
	}
	return root
}

func (s *designService) fromTemplate(name string) flex.Container {
	t, ok := flex.LookupTemplate(name)
	if !ok {
		s.logger.Warn(designModule, "Unknown template, starting from an empty bubble", map[string]interface{}{"template": name})
		return s.emptyDocument(flex.TypeBubble)
	}
	root, err := s.codec.Hydrate(t.Build())
	if err != nil {
		s.logger.Error(designModule, "Template failed to hydrate", hydrateDetails(err))
		return s.emptyDocument(flex.TypeBubble)
	}
	return root
}

// cloneOrEmpty copies a saved design's tree for editing, falling back to an
// empty bubble if the snapshot cannot be copied. Callers hold mu.
func (s *designService) cloneOrEmpty(d *entity.Design) flex.Container {
	root, err := codec.Clone(d.Root)
	if err != nil {
		s.logger.Error(designModule, "Saved design could not be copied", map[string]interface{}{
			"design_id": d.Id,
			"error":     err.Error(),
		})
		return s.emptyDocument(flex.TypeBubble)
	}
	return root
}

func (s *designService) nodeTemplate(req *dto.AddNodeRequest) (flex.Node, error) {
	if len(req.Node) > 0 {
		n, err := flex.DecodeNode(req.Node)
		if err != nil {
			return nil, err
		}
		return codec.Repair(n), nil
	}
	n := flex.DefaultTemplate(flex.Type(req.NodeType))
	if n == nil {
		return nil, fmt.Errorf("%w: unknown node type %q", flex.ErrInvalidChildType, req.NodeType)
	}
	return n, nil
}

func (s *designService) latestDesign() *entity.Design {
	var latest *entity.Design
	for _, d := range s.designs {
		if latest == nil || d.UpdatedAt.After(latest.UpdatedAt) {
			latest = d
		}
	}
	return latest
}

func (s *designService) indexOf(id string) int {
	for i, d := range s.designs {
		if d.Id == id {
			return i
		}
	}
	return -1
}

func (s *designService) indexOfName(name string) int {
	for i, d := range s.designs {
		if strings.EqualFold(d.Name, name) {
			return i
		}
	}
	return -1
}

func (s *designService) rejected(op string, err error, details map[string]interface{}) {
	details["op"] = op
	details["error"] = err.Error()
	s.logger.Warn(designModule, "Edit rejected", details)
}

func (s *designService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn(designModule, "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func hydrateDetails(err error) map[string]interface{} {
	details := map[string]interface{}{"error": err.Error()}
	var me *flex.MalformedError
	if errors.As(err, &me) && me.Fragment != "" {
		details["fragment"] = me.Fragment
	}
	return details
}

func documentPayload(doc *dto.DocumentResponse) map[string]interface{} {
	return map[string]interface{}{
		"root":             doc.Root,
		"selected_node_id": doc.SelectedNodeId,
		"revision":         doc.Revision,
	}
}

func designPayload(d *entity.Design) map[string]interface{} {
	return map[string]interface{}{
		"design_id": d.Id,
		"name":      d.Name,
	}
}

func toDesignResponse(d *entity.Design, withTree bool) *dto.DesignResponse {
	res := &dto.DesignResponse{
		Id:        d.Id,
		Name:      d.Name,
		Thumbnail: d.Thumbnail,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if withTree {
		res.FlexMessage = d.Root
	}
	return res
}

func copyID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
