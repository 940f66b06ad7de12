package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flex-designer-be/internal/dto"
	"flex-designer-be/internal/entity"
	"flex-designer-be/internal/pkg/logger"
	"flex-designer-be/internal/repository/contract"
	"flex-designer-be/internal/repository/implementation"
	"flex-designer-be/internal/repository/memory"
	"flex-designer-be/pkg/events"
	"flex-designer-be/pkg/flex"
	"flex-designer-be/pkg/idgen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type failingRepo struct {
	loadErr error
	saveErr error
	designs []*entity.Design
}

func (r *failingRepo) LoadAll(context.Context) ([]*entity.Design, error) { return r.designs, r.loadErr }
func (r *failingRepo) SaveAll(context.Context, []*entity.Design) error  { return r.saveErr }

type fixture struct {
	svc   *designService
	store *memory.KeyValueStore
	repo  contract.DesignRepository
	pub   *recordingPublisher
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewKeyValueStore()
	repo := implementation.NewDesignRepository(store, "designs")
	return newFixtureWithRepo(t, repo, store)
}

func newFixtureWithRepo(t *testing.T, repo contract.DesignRepository, store *memory.KeyValueStore) *fixture {
	t.Helper()
	f := &fixture{
		store: store,
		repo:  repo,
		pub:   &recordingPublisher{},
		clock: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewDesignService(repo, f.pub, idgen.Sequence("n"), "Flex Message", logger.NewNopLogger()).(*designService)
	f.svc.now = func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}
	return f
}

func bodyOf(t *testing.T, root flex.Container) *flex.Box {
	t.Helper()
	b, ok := root.(*flex.Bubble)
	require.True(t, ok, "root is %T", root)
	require.NotNil(t, b.Body)
	return b.Body
}

func TestDesignService_InitialDocument(t *testing.T) {
	f := newFixture(t)

	doc := f.svc.Current()
	require.NotNil(t, doc.Root)
	assert.Equal(t, flex.TypeBubble, doc.Root.NodeType())
	require.NotNil(t, doc.SelectedNodeId)
	assert.Equal(t, doc.Root.NodeID(), *doc.SelectedNodeId)
	assert.NoError(t, flex.ValidateIDs(doc.Root))
}

func TestDesignService_StartEmpty(t *testing.T) {
	f := newFixture(t)
	before := f.svc.Current().Root

	require.NoError(t, f.svc.Start(context.Background()))
	assert.Same(t, before, f.svc.Current().Root)
	assert.Empty(t, f.svc.ListDesigns(context.Background()))
}

func TestDesignService_StartOpensLatestDesign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	older := &entity.Design{Id: "d1", Name: "Older", Root: &flex.Bubble{Base: flex.Base{ID: "old"}},
		CreatedAt: f.clock, UpdatedAt: f.clock}
	newer := &entity.Design{Id: "d2", Name: "Newer", Root: &flex.Bubble{Base: flex.Base{ID: "new"}},
		CreatedAt: f.clock, UpdatedAt: f.clock.Add(time.Hour)}
	require.NoError(t, f.repo.SaveAll(ctx, []*entity.Design{newer, older}))

	require.NoError(t, f.svc.Start(ctx))

	doc := f.svc.Current()
	assert.Equal(t, "new", doc.Root.NodeID())
	assert.Equal(t, "new", *doc.SelectedNodeId)
	assert.Len(t, f.svc.ListDesigns(ctx), 2)
	assert.Contains(t, f.pub.types(), events.DocumentReplaced)
}

func TestDesignService_StartCorruptStorage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Set(ctx, "designs", []byte(`{"not":"an array"}`)))

	require.NoError(t, f.svc.Start(ctx))
	assert.Empty(t, f.svc.ListDesigns(ctx))
	assert.Equal(t, flex.TypeBubble, f.svc.Current().Root.NodeType())
}

func TestDesignService_StartStorageDown(t *testing.T) {
	f := newFixtureWithRepo(t, &failingRepo{loadErr: errors.New("connection refused")}, nil)

	err := f.svc.Start(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestDesignService_NewDocument(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		req      dto.NewDocumentRequest
		wantType flex.Type
		check    func(t *testing.T, root flex.Container)
	}{
		{
			name:     "bubble",
			req:      dto.NewDocumentRequest{Kind: "bubble"},
			wantType: flex.TypeBubble,
		},
		{
			name:     "carousel",
			req:      dto.NewDocumentRequest{Kind: "carousel"},
			wantType: flex.TypeCarousel,
			check: func(t *testing.T, root flex.Container) {
				assert.Len(t, root.(*flex.Carousel).Contents, 2)
			},
		},
		{
			name:     "template",
			req:      dto.NewDocumentRequest{Kind: "template", TemplateName: "E-commerce Product Card"},
			wantType: flex.TypeBubble,
			check: func(t *testing.T, root flex.Container) {
				assert.NotNil(t, root.(*flex.Bubble).Hero)
				assert.NotNil(t, root.(*flex.Bubble).Footer)
			},
		},
		{
			name:     "unknown template falls back to empty bubble",
			req:      dto.NewDocumentRequest{Kind: "template", TemplateName: "Nope"},
			wantType: flex.TypeBubble,
			check: func(t *testing.T, root flex.Container) {
				assert.Nil(t, root.(*flex.Bubble).Hero)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			doc, err := f.svc.NewDocument(ctx, &tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, doc.Root.NodeType())
			assert.Equal(t, doc.Root.NodeID(), *doc.SelectedNodeId)
			assert.NoError(t, flex.ValidateIDs(doc.Root))
			if tt.check != nil {
				tt.check(t, doc.Root)
			}
		})
	}
}

func TestDesignService_AddNode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	root := f.svc.Current().Root
	body := bodyOf(t, root)
	before := len(body.Contents)

	res, err := f.svc.AddNode(ctx, &dto.AddNodeRequest{
		ParentId: body.NodeID(),
		Node:     []byte(`{"type":"text","text":"Hi"}`),
	})
	require.NoError(t, err)

	newBody := bodyOf(t, res.Root)
	require.Len(t, newBody.Contents, before+1)
	added := newBody.Contents[before].(*flex.Text)
	assert.Equal(t, "Hi", added.Text)
	assert.Equal(t, res.AddedNodeId, added.NodeID())
	assert.NotEqual(t, root.NodeID(), added.NodeID())
	assert.NotEqual(t, body.NodeID(), added.NodeID())
	assert.Equal(t, res.AddedNodeId, *res.SelectedNodeId)
	assert.Greater(t, res.Revision, uint64(1))
	assert.Equal(t, []string{events.DocumentChanged}, f.pub.types())

	// The previous tree value is untouched.
	assert.Len(t, body.Contents, before)
}

func TestDesignService_AddNodeFromLibrary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	body := bodyOf(t, f.svc.Current().Root)

	res, err := f.svc.AddNode(ctx, &dto.AddNodeRequest{ParentId: body.NodeID(), NodeType: "button"})
	require.NoError(t, err)

	added := bodyOf(t, res.Root).Contents[len(bodyOf(t, res.Root).Contents)-1].(*flex.Button)
	assert.Equal(t, "Learn More", added.Action.Label)
}

func TestDesignService_AddNodeRepairsTemplate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	body := bodyOf(t, f.svc.Current().Root)

	res, err := f.svc.AddNode(ctx, &dto.AddNodeRequest{
		ParentId: body.NodeID(),
		Node:     []byte(`{"type":"button","action":{"type":"uri","uri":"https://x"}}`),
	})
	require.NoError(t, err)

	n, ok := findNode(res.Root, res.AddedNodeId)
	require.True(t, ok)
	assert.Equal(t, "Button", n.(*flex.Button).Action.Label)
}

func TestDesignService_AddNodeRejected(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		req     func(root flex.Container) *dto.AddNodeRequest
		wantErr error
	}{
		{
			name: "carousel inside box",
			req: func(root flex.Container) *dto.AddNodeRequest {
				return &dto.AddNodeRequest{ParentId: root.(*flex.Bubble).Body.NodeID(), NodeType: "carousel"}
			},
			wantErr: flex.ErrInvalidChildType,
		},
		{
			name: "unknown library type",
			req: func(root flex.Container) *dto.AddNodeRequest {
				return &dto.AddNodeRequest{ParentId: root.NodeID(), NodeType: "paragraph"}
			},
			wantErr: flex.ErrInvalidChildType,
		},
		{
			name: "unknown parent",
			req: func(flex.Container) *dto.AddNodeRequest {
				return &dto.AddNodeRequest{ParentId: "missing", NodeType: "text"}
			},
			wantErr: flex.ErrNotFound,
		},
		{
			name: "text into hero",
			req: func(root flex.Container) *dto.AddNodeRequest {
				return &dto.AddNodeRequest{ParentId: root.NodeID(), Slot: "hero", NodeType: "text"}
			},
			wantErr: flex.ErrInvalidChildType,
		},
		{
			name: "malformed node",
			req: func(root flex.Container) *dto.AddNodeRequest {
				return &dto.AddNodeRequest{ParentId: root.NodeID(), Node: []byte(`{"type":"paragraph"}`)}
			},
			wantErr: flex.ErrMalformedDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			before := f.svc.Current()

			_, err := f.svc.AddNode(ctx, tt.req(before.Root))
			assert.ErrorIs(t, err, tt.wantErr)

			after := f.svc.Current()
			assert.Same(t, before.Root, after.Root)
			assert.Equal(t, before.SelectedNodeId, after.SelectedNodeId)
			assert.Empty(t, f.pub.types())
		})
	}
}

func TestDesignService_UpdateNode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	body := bodyOf(t, f.svc.Current().Root)
	hint := body.Contents[0]
	selected := f.svc.Current().SelectedNodeId

	doc, err := f.svc.UpdateNode(ctx, hint.NodeID(), map[string]any{"text": "Changed", "id": "hijack", "type": "image"})
	require.NoError(t, err)

	n, ok := findNode(doc.Root, hint.NodeID())
	require.True(t, ok)
	assert.Equal(t, "Changed", n.(*flex.Text).Text)
	assert.Equal(t, selected, doc.SelectedNodeId)

	_, err = f.svc.UpdateNode(ctx, "missing", map[string]any{"text": "x"})
	assert.ErrorIs(t, err, flex.ErrNotFound)
}

func TestDesignService_DeleteNodeSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting the selected node clears the selection", func(t *testing.T) {
		f := newFixture(t)
		body := bodyOf(t, f.svc.Current().Root)
		_, err := f.svc.Select(ctx, ptr(body.Contents[0].NodeID()))
		require.NoError(t, err)

		doc, err := f.svc.DeleteNode(ctx, body.Contents[0].NodeID())
		require.NoError(t, err)
		assert.Nil(t, doc.SelectedNodeId)
		assert.Empty(t, bodyOf(t, doc.Root).Contents)
	})

	t.Run("deleting an ancestor of the selection clears it", func(t *testing.T) {
		f := newFixture(t)
		body := bodyOf(t, f.svc.Current().Root)
		_, err := f.svc.Select(ctx, ptr(body.Contents[0].NodeID()))
		require.NoError(t, err)

		doc, err := f.svc.DeleteNode(ctx, body.NodeID())
		require.NoError(t, err)
		assert.Nil(t, doc.SelectedNodeId)
		assert.Nil(t, doc.Root.(*flex.Bubble).Body)
	})

	t.Run("deleting another node keeps the selection", func(t *testing.T) {
		f := newFixture(t)
		root := f.svc.Current().Root
		body := bodyOf(t, root)

		doc, err := f.svc.DeleteNode(ctx, body.Contents[0].NodeID())
		require.NoError(t, err)
		require.NotNil(t, doc.SelectedNodeId)
		assert.Equal(t, root.NodeID(), *doc.SelectedNodeId)
	})

	t.Run("root cannot be deleted", func(t *testing.T) {
		f := newFixture(t)
		before := f.svc.Current().Root

		_, err := f.svc.DeleteNode(ctx, before.NodeID())
		assert.ErrorIs(t, err, flex.ErrRootNode)
		assert.Same(t, before, f.svc.Current().Root)
	})

	t.Run("unknown node", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.DeleteNode(ctx, "missing")
		assert.ErrorIs(t, err, flex.ErrNotFound)
	})
}

func TestDesignService_Select(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	doc, err := f.svc.Select(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, doc.SelectedNodeId)

	_, err = f.svc.Select(ctx, ptr("missing"))
	assert.ErrorIs(t, err, flex.ErrNotFound)
	assert.Nil(t, f.svc.Current().SelectedNodeId)
}

func TestDesignService_ImportWire(t *testing.T) {
	ctx := context.Background()

	t.Run("valid tree is hydrated and installed", func(t *testing.T) {
		f := newFixture(t)
		doc, err := f.svc.ImportWire(ctx, []byte(`{"type":"carousel","contents":[{"type":"bubble","hero":{"type":"image","url":"https://x/a.png"}}]}`))
		require.NoError(t, err)
		assert.Equal(t, flex.TypeCarousel, doc.Root.NodeType())
		assert.Equal(t, doc.Root.NodeID(), *doc.SelectedNodeId)
		assert.NoError(t, flex.ValidateIDs(doc.Root))
	})

	t.Run("malformed tree leaves the document alone", func(t *testing.T) {
		f := newFixture(t)
		before := f.svc.Current().Root

		_, err := f.svc.ImportWire(ctx, []byte(`{"type":"paragraph"}`))
		assert.ErrorIs(t, err, flex.ErrMalformedDocument)
		assert.Same(t, before, f.svc.Current().Root)
	})

	t.Run("non-container root is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ImportWire(ctx, []byte(`{"type":"text","text":"x"}`))
		assert.ErrorIs(t, err, flex.ErrMalformedDocument)
	})

	t.Run("miscased field cannot smuggle a subtree", func(t *testing.T) {
		f := newFixture(t)
		before := f.svc.Current().Root

		_, err := f.svc.ImportWire(ctx, []byte(`{"type":"bubble","body":{"type":"box","Contents":[{"type":"paragraph"}],"contents":[]}}`))
		assert.ErrorIs(t, err, flex.ErrMalformedDocument)
		assert.Same(t, before, f.svc.Current().Root)
	})
}

func TestDesignService_SaveDesign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.SaveDesign(ctx, &dto.SaveDesignRequest{Name: "Promo"})
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	// Edit the live document; the saved snapshot must not follow.
	body := bodyOf(t, f.svc.Current().Root)
	_, err = f.svc.UpdateNode(ctx, body.Contents[0].NodeID(), map[string]any{"text": "after save"})
	require.NoError(t, err)

	shown, err := f.svc.ShowDesign(ctx, first.Id)
	require.NoError(t, err)
	savedHint := bodyOf(t, shown.FlexMessage).Contents[0].(*flex.Text)
	assert.NotEqual(t, "after save", savedHint.Text)

	second, err := f.svc.SaveDesign(ctx, &dto.SaveDesignRequest{Name: "PROMO"})
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, "PROMO", second.Name)

	list := f.svc.ListDesigns(ctx)
	require.Len(t, list, 1)

	persisted, err := f.repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	savedText := bodyOf(t, persisted[0].Root).Contents[0].(*flex.Text)
	assert.Equal(t, "after save", savedText.Text)

	assert.Equal(t, events.DesignSaved, f.pub.types()[len(f.pub.types())-1])
}

func TestDesignService_SaveDesignValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SaveDesign(context.Background(), &dto.SaveDesignRequest{Name: "   "})
	assert.ErrorIs(t, err, flex.ErrInvalidProperty)
}

func TestDesignService_PersistFailureKeepsDesigns(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{saveErr: errors.New("disk full")}
	f := newFixtureWithRepo(t, repo, nil)

	_, err := f.svc.SaveDesign(ctx, &dto.SaveDesignRequest{Name: "Promo"})
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, f.svc.ListDesigns(ctx))
	assert.Empty(t, f.pub.types())
}

func TestDesignService_LoadDesign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	saved, err := f.svc.SaveDesign(ctx, &dto.SaveDesignRequest{Name: "Promo"})
	require.NoError(t, err)
	shown, err := f.svc.ShowDesign(ctx, saved.Id)
	require.NoError(t, err)

	_, err = f.svc.NewDocument(ctx, &dto.NewDocumentRequest{Kind: "carousel"})
	require.NoError(t, err)

	doc, err := f.svc.LoadDesign(ctx, saved.Id)
	require.NoError(t, err)
	assert.Equal(t, shown.FlexMessage, doc.Root)
	assert.NotSame(t, shown.FlexMessage, doc.Root)
	assert.Equal(t, doc.Root.NodeID(), *doc.SelectedNodeId)

	_, err = f.svc.LoadDesign(ctx, "missing")
	assert.ErrorIs(t, err, ErrDesignNotFound)
}

func TestDesignService_DuplicateDesign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	saved, err := f.svc.SaveDesign(ctx, &dto.SaveDesignRequest{Name: "Promo"})
	require.NoError(t, err)

	dup, err := f.svc.DuplicateDesign(ctx, saved.Id)
	require.NoError(t, err)
	assert.Equal(t, "Promo (Copy)", dup.Name)
	assert.NotEqual(t, saved.Id, dup.Id)
	assert.True(t, dup.CreatedAt.After(saved.CreatedAt))

	orig, err := f.svc.ShowDesign(ctx, saved.Id)
	require.NoError(t, err)
	copied, err := f.svc.ShowDesign(ctx, dup.Id)
	require.NoError(t, err)

	ids := map[string]bool{}
	flex.Walk(orig.FlexMessage, func(n flex.Node) bool { ids[n.NodeID()] = true; return true })
	flex.Walk(copied.FlexMessage, func(n flex.Node) bool {
		assert.False(t, ids[n.NodeID()], "id %s shared with the original", n.NodeID())
		return true
	})
	assert.Equal(t, flex.Count(orig.FlexMessage), flex.Count(copied.FlexMessage))

	_, err = f.svc.DuplicateDesign(ctx, "missing")
	assert.ErrorIs(t, err, ErrDesignNotFound)
}

func TestDesignService_RenameAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.svc.SaveDesign(ctx, &dto.SaveDesignRequest{Name: "A"})
	require.NoError(t, err)
	b, err := f.svc.SaveDesign(ctx, &dto.SaveDesignRequest{Name: "B"})
	require.NoError(t, err)

	list := f.svc.ListDesigns(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, b.Id, list[0].Id, "most recently updated first")

	renamed, err := f.svc.RenameDesign(ctx, a.Id, "A2")
	require.NoError(t, err)
	assert.Equal(t, "A2", renamed.Name)
	assert.True(t, renamed.UpdatedAt.After(a.UpdatedAt))
	assert.Equal(t, a.CreatedAt, renamed.CreatedAt)
	assert.Equal(t, a.Id, f.svc.ListDesigns(ctx)[0].Id)

	_, err = f.svc.RenameDesign(ctx, a.Id, "")
	assert.ErrorIs(t, err, flex.ErrInvalidProperty)
	_, err = f.svc.RenameDesign(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrDesignNotFound)

	require.NoError(t, f.svc.DeleteDesign(ctx, a.Id))
	list = f.svc.ListDesigns(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, b.Id, list[0].Id)
	assert.ErrorIs(t, f.svc.DeleteDesign(ctx, a.Id), ErrDesignNotFound)

	persisted, err := f.repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 1)

	types := f.pub.types()
	assert.Contains(t, types, events.DesignRenamed)
	assert.Equal(t, events.DesignDeleted, types[len(types)-1])
}

func TestDesignService_Export(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Export("")
	require.NoError(t, err)
	assert.NotContains(t, res.Json, `"id"`)

	data, err := f.svc.WireJSON()
	require.NoError(t, err)
	assert.JSONEq(t, res.Json, string(data))
}

func findNode(root flex.Node, id string) (flex.Node, bool) {
	var hit flex.Node
	flex.Walk(root, func(n flex.Node) bool {
		if n.NodeID() == id {
			hit = n
			return false
		}
		return true
	})
	return hit, hit != nil
}

func ptr(s string) *string { return &s }
