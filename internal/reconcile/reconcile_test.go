package reconcile_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unicef/hope-grievance/internal/models"
	"github.com/unicef/hope-grievance/internal/reconcile"
)

func sequentialIDs() reconcile.Option {
	n := 0
	return reconcile.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	})
}

func TestAddThenRemoveDeletesNewItem(t *testing.T) {
	c := reconcile.New[models.PaymentChannel]()

	id := c.Add(models.PaymentChannel{BankName: "X"})
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, reconcile.OriginNew, items[0].Origin)
	assert.NotEmpty(t, id)

	require.NoError(t, c.Remove(id))
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.ToRemoveIDs())
}

func TestRemoveExistingOnlyFlags(t *testing.T) {
	c := reconcile.New[models.Document]()
	require.NoError(t, c.AddExisting("e1", models.Document{ID: "e1", Number: "123"}))

	require.NoError(t, c.Remove("e1"))
	item, ok := c.Get("e1")
	require.True(t, ok)
	assert.True(t, item.Removed)
	assert.Equal(t, []string{"e1"}, c.ToRemoveIDs())

	// Removing twice keeps a single flag.
	require.NoError(t, c.Remove("e1"))
	assert.Equal(t, []string{"e1"}, c.ToRemoveIDs())

	require.NoError(t, c.Restore("e1"))
	assert.Empty(t, c.ToRemoveIDs())
	assert.ErrorIs(t, c.Restore("e1"), reconcile.ErrNotRemoved)
}

func TestEditLifecycle(t *testing.T) {
	c := reconcile.New[models.Document](sequentialIDs())
	require.NoError(t, c.AddExisting("e1", models.Document{ID: "e1", Number: "123"}))

	payload, err := c.StartEdit("e1")
	require.NoError(t, err)
	assert.Equal(t, "123", payload.Number)
	assert.Len(t, c.Editing(), 1)
	assert.Empty(t, c.Display())

	require.NoError(t, c.CancelEdit("e1"))
	item, _ := c.Get("e1")
	assert.Equal(t, "123", item.Payload.Number)
	assert.False(t, item.Edited)
	assert.Empty(t, c.Edited())

	_, err = c.StartEdit("e1")
	require.NoError(t, err)
	require.NoError(t, c.CommitEdit("e1", models.Document{ID: "e1", Number: "456"}))
	assert.Equal(t, []models.Document{{ID: "e1", Number: "456"}}, c.Edited())
	assert.ErrorIs(t, c.CommitEdit("e1", models.Document{}), reconcile.ErrNotEditing)
	assert.ErrorIs(t, c.CancelEdit("e1"), reconcile.ErrNotEditing)

	// A new item edited in place stays in Added.
	id := c.Add(models.Document{Number: "1"})
	assert.Equal(t, "new-1", id)
	_, err = c.StartEdit(id)
	require.NoError(t, err)
	require.NoError(t, c.CommitEdit(id, models.Document{Number: "2"}))
	assert.Equal(t, []models.Document{{Number: "2"}}, c.Added())
}

func TestCommitOfRegisteredPayloadIsNotAnEdit(t *testing.T) {
	c := reconcile.New[models.Document]()
	original := models.Document{ID: "e1", Number: "123", Extra: map[string]any{"key": "national_id"}}
	require.NoError(t, c.AddExisting("e1", original))

	_, err := c.StartEdit("e1")
	require.NoError(t, err)
	require.NoError(t, c.CommitEdit("e1", models.Document{ID: "e1", Number: "456"}))
	assert.Len(t, c.Edited(), 1)

	_, err = c.StartEdit("e1")
	require.NoError(t, err)
	require.NoError(t, c.CommitEdit("e1", original))
	assert.Empty(t, c.Edited())
	item, _ := c.Get("e1")
	assert.False(t, item.Edited)
}

func TestRemovedItemCannotBeEdited(t *testing.T) {
	c := reconcile.New[models.Identity]()
	require.NoError(t, c.AddExisting("i1", models.Identity{ID: "i1"}))
	_, err := c.StartEdit("i1")
	require.NoError(t, err)

	require.NoError(t, c.Remove("i1"))
	item, _ := c.Get("i1")
	assert.False(t, item.Editing, "removing leaves edit mode")

	_, err = c.StartEdit("i1")
	assert.ErrorIs(t, err, reconcile.ErrRemoved)
	assert.ErrorIs(t, c.CommitEdit("i1", models.Identity{}), reconcile.ErrRemoved)
}

func TestUnknownIDs(t *testing.T) {
	c := reconcile.New[models.Identity]()
	_, err := c.StartEdit("nope")
	assert.ErrorIs(t, err, reconcile.ErrNotFound)
	assert.ErrorIs(t, c.Remove("nope"), reconcile.ErrNotFound)
	assert.ErrorIs(t, c.CancelEdit("nope"), reconcile.ErrNotFound)
	assert.ErrorIs(t, c.AddExisting("", models.Identity{}), reconcile.ErrNotFound)

	require.NoError(t, c.AddExisting("a", models.Identity{}))
	assert.ErrorIs(t, c.AddExisting("a", models.Identity{}), reconcile.ErrDuplicate)
}

func TestFindIndexByID(t *testing.T) {
	c := reconcile.New[models.Document](sequentialIDs())
	require.NoError(t, c.AddExisting("e1", models.Document{}))
	c.Add(models.Document{})

	items := c.Items()
	assert.Equal(t, 0, reconcile.FindIndexByID(items, "e1"))
	assert.Equal(t, 1, reconcile.FindIndexByID(items, "new-1"))
	assert.Equal(t, -1, reconcile.FindIndexByID(items, "missing"))
}

// Property: for any sequence of operations the collection keeps its
// invariants: removal flags only name existing items, ids are unique, and
// cancelling an edit restores the pre-edit payload.
func TestCollectionInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("invariants hold under random operations", prop.ForAll(
		func(ops []int) bool {
			c := reconcile.New[models.Document](sequentialIDs())
			for i := 0; i < 3; i++ {
				id := fmt.Sprintf("e%d", i)
				if err := c.AddExisting(id, models.Document{ID: id, Number: id}); err != nil {
					return false
				}
			}
			atStart := map[string]models.Document{}

			for step, op := range ops {
				items := c.Items()
				var target string
				if len(items) > 0 {
					target = items[(op/6)%len(items)].ID
				}

				switch op % 6 {
				case 0:
					c.Add(models.Document{Number: fmt.Sprintf("n%d", step)})
				case 1:
					if p, err := c.StartEdit(target); err == nil {
						atStart[target] = p
					}
				case 2:
					before, ok := atStart[target]
					if err := c.CancelEdit(target); err == nil {
						item, _ := c.Get(target)
						if !ok || !reflect.DeepEqual(item.Payload, before) {
							return false
						}
					}
				case 3:
					_ = c.CommitEdit(target, models.Document{Number: fmt.Sprintf("c%d", step)})
				case 4:
					_ = c.Remove(target)
				case 5:
					_ = c.Restore(target)
				}

				seen := map[string]bool{}
				for _, it := range c.Items() {
					if seen[it.ID] {
						return false
					}
					seen[it.ID] = true
					if it.Removed && it.Editing {
						return false
					}
				}
				for _, id := range c.ToRemoveIDs() {
					it, ok := c.Get(id)
					if !ok || it.Origin != reconcile.OriginExisting {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 59)),
	))

	properties.TestingRun(t)
}
