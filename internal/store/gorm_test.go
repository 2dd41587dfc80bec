package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/realtime"
	"github.com/pageza/larder/backend/internal/testhelpers"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Long-lived gRPC and OpenCensus workers started by the Firestore client.
		goleak.IgnoreTopFunction("google.golang.org/grpc/internal/grpcsync.(*CallbackSerializer).run"),
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

func newTestStore(t *testing.T) (*SQLStore, *realtime.Hub) {
	t.Helper()
	hub := realtime.NewHub()
	return NewSQLStore(testhelpers.SetupTestDB(t), hub, zap.NewNop()), hub
}

func next[T any](t *testing.T, sub *Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.Updates():
		require.True(t, ok, "subscription ended: %v", sub.Err())
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	var zero T
	return zero
}

func at(minute int) time.Time {
	return time.Date(2024, 3, 1, 12, minute, 0, 0, time.UTC)
}

func TestCollectionRequiresOwner(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Recipes("")
	assert.ErrorIs(t, err, ErrNoOwner)
	_, err = s.GroceryLists("")
	assert.ErrorIs(t, err, ErrNoOwner)
}

func TestCreateGetList(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	recipes, err := s.Recipes("u1")
	require.NoError(t, err)
	assert.Equal(t, "users/u1/recipes", recipes.Path())

	oldID, err := recipes.Create(ctx, &model.Recipe{Name: "Pancakes", CreatedAt: at(1)})
	require.NoError(t, err)
	newID, err := recipes.Create(ctx, &model.Recipe{
		Name:        "Omelette",
		Ingredients: model.Ingredients{{ID: "i1", Name: "Egg", Amount: 2}},
		Steps:       model.Steps{"Whisk", "Fry"},
		CreatedAt:   at(2),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, oldID)

	got, err := recipes.Get(ctx, newID)
	require.NoError(t, err)
	assert.Equal(t, "Omelette", got.Name)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, model.SourceManual, got.SourceType)
	assert.Nil(t, got.Source)
	assert.Equal(t, model.Steps{"Whisk", "Fry"}, got.Steps)
	assert.Equal(t, model.Ingredients{{ID: "i1", Name: "Egg", Amount: 2}}, got.Ingredients)

	all, err := recipes.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newID, all[0].ID, "newest first")
	assert.Equal(t, oldID, all[1].ID)
}

func TestCollectionsAreScopedToUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	mine, _ := s.GroceryLists("u1")
	theirs, _ := s.GroceryLists("u2")

	id, err := mine.Create(ctx, &model.GroceryList{Name: "Weekly"})
	require.NoError(t, err)

	_, err = theirs.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, theirs.Update(ctx, id, Fields{"name": "Stolen"}), ErrNotFound)
	assert.ErrorIs(t, theirs.Delete(ctx, id), ErrNotFound)

	list, err := theirs.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateRejectsInvalidDocument(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	recipes, _ := s.Recipes("u1")

	_, err := recipes.Create(ctx, &model.Recipe{Name: "Link", SourceType: model.SourceURL})
	assert.ErrorIs(t, err, ErrInvalidDocument)

	all, err := recipes.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "nothing persisted")
}

func TestUpdateOverwritesWholeField(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	lists, _ := s.GroceryLists("u1")
	id, err := lists.Create(ctx, &model.GroceryList{
		Name:  "Weekly",
		Items: model.GroceryItems{{ID: "a", Name: "Milk", Amount: 1}},
	})
	require.NoError(t, err)

	items := model.GroceryItems{{ID: "b", Name: "Bread", Amount: 2, Checked: true}}
	require.NoError(t, lists.Update(ctx, id, Fields{"items": items}))

	got, err := lists.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, items, got.Items)
	assert.Equal(t, "Weekly", got.Name)
}

func TestUpdateRejectsUnknownFields(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	lists, _ := s.GroceryLists("u1")
	id, err := lists.Create(ctx, &model.GroceryList{Name: "Weekly"})
	require.NoError(t, err)

	err = lists.Update(ctx, id, Fields{"user_id": "u2"})
	assert.ErrorIs(t, err, ErrFieldNotWritable)
	assert.ErrorIs(t, lists.Update(ctx, "missing", Fields{"name": "x"}), ErrNotFound)
}

func TestMutate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	lists, _ := s.GroceryLists("u1")
	id, err := lists.Create(ctx, &model.GroceryList{
		Name:  "Weekly",
		Items: model.GroceryItems{{ID: "a", Name: "Milk", Amount: 1}},
	})
	require.NoError(t, err)

	err = lists.Mutate(ctx, id, func(l *model.GroceryList) (Fields, error) {
		return Fields{"items": l.Items.Toggle("a")}, nil
	})
	require.NoError(t, err)
	got, err := lists.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Items[0].Checked)

	boom := errors.New("boom")
	err = lists.Mutate(ctx, id, func(l *model.GroceryList) (Fields, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	err = lists.Mutate(ctx, "missing", func(l *model.GroceryList) (Fields, error) {
		t.Fatal("fn must not run for a missing document")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	recipes, _ := s.Recipes("u1")
	id, err := recipes.Create(ctx, &model.Recipe{Name: "Toast"})
	require.NoError(t, err)

	require.NoError(t, recipes.Delete(ctx, id))
	_, err = recipes.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, recipes.Delete(ctx, id), ErrNotFound)
}

func TestListSkipsInvalidDocuments(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupTestDB(t)
	s := NewSQLStore(db, realtime.NewHub(), zap.NewNop())
	recipes, _ := s.Recipes("u1")
	_, err := recipes.Create(ctx, &model.Recipe{Name: "Good"})
	require.NoError(t, err)

	require.NoError(t, db.Exec(
		`INSERT INTO recipes (id, user_id, name, source_type, ingredients, steps, created_at, updated_at)
		 VALUES ('bad', 'u1', 'Bad', 'fax', '[]', '[]', ?, ?)`, at(0), at(0)).Error)

	all, err := recipes.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Good", all[0].Name)

	_, err = recipes.Get(ctx, "bad")
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestSubscribeAllDeliversSnapshots(t *testing.T) {
	ctx := context.Background()
	s, hub := newTestStore(t)
	lists, _ := s.GroceryLists("u1")

	sub, err := lists.SubscribeAll(ctx)
	require.NoError(t, err)
	defer sub.Cancel()

	assert.Empty(t, next(t, sub), "initial snapshot")

	id, err := lists.Create(ctx, &model.GroceryList{Name: "Weekly"})
	require.NoError(t, err)
	snap := next(t, sub)
	require.Len(t, snap, 1)
	assert.Equal(t, id, snap[0].ID)

	require.NoError(t, lists.Update(ctx, id, Fields{"name": "Party"}))
	assert.Equal(t, "Party", next(t, sub)[0].Name)

	sub.Cancel()
	assert.Equal(t, 0, hub.Listeners(lists.Path()), "listener released")
	_, ok := <-sub.Updates()
	assert.False(t, ok)
	assert.NoError(t, sub.Err())
}

func TestSubscribeDocument(t *testing.T) {
	ctx := context.Background()
	s, hub := newTestStore(t)
	recipes, _ := s.Recipes("u1")
	id, err := recipes.Create(ctx, &model.Recipe{Name: "Soup"})
	require.NoError(t, err)

	sub, err := recipes.Subscribe(ctx, id)
	require.NoError(t, err)
	defer sub.Cancel()

	snap := next(t, sub)
	require.True(t, snap.Found)
	assert.Equal(t, "Soup", snap.Doc.Name)

	require.NoError(t, recipes.Mutate(ctx, id, func(r *model.Recipe) (Fields, error) {
		return Fields{"steps": r.Steps.Append("Simmer")}, nil
	}))
	snap = next(t, sub)
	assert.Equal(t, model.Steps{"Simmer"}, snap.Doc.Steps)

	require.NoError(t, recipes.Delete(ctx, id))
	snap = next(t, sub)
	assert.False(t, snap.Found)
	assert.Nil(t, snap.Doc)

	sub.Cancel()
	sub.Cancel()
	assert.Equal(t, 0, hub.Listeners(DocumentPath("u1", "recipes", id)))
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, hub := newTestStore(t)
	lists, _ := s.GroceryLists("u1")

	sub, err := lists.SubscribeAll(ctx)
	require.NoError(t, err)
	next(t, sub)

	cancel()
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop")
	}
	assert.NoError(t, sub.Err())
	assert.Equal(t, 0, hub.Listeners(lists.Path()))
}

func TestSlowSubscriberSeesLatestSnapshot(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	lists, _ := s.GroceryLists("u1")
	id, err := lists.Create(ctx, &model.GroceryList{Name: "v0"})
	require.NoError(t, err)

	sub, err := lists.Subscribe(ctx, id)
	require.NoError(t, err)
	defer sub.Cancel()

	for _, name := range []string{"v1", "v2", "v3"} {
		require.NoError(t, lists.Update(ctx, id, Fields{"name": name}))
	}

	require.Eventually(t, func() bool {
		select {
		case snap := <-sub.Updates():
			return snap.Found && snap.Doc.Name == "v3"
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
