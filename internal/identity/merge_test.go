package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleList() []Identity {
	return []Identity{
		User("arn:aws:iam::000000000000:user/johndoe", "johndoe", "system:masters"),
		User("arn:aws:iam::000000000000:user/alice", "alice", "viewers"),
		User("arn:aws:iam::000000000000:user/bob", "bob"),
	}
}

func usernames(list []Identity) []string {
	names := make([]string, 0, len(list))
	for _, id := range list {
		names = append(names, id.Username)
	}
	return names
}

func TestUpsert(t *testing.T) {
	t.Parallel()

	t.Run("appends unknown username at the end", func(t *testing.T) {
		t.Parallel()
		list := sampleList()
		mark := User("arn:aws:iam::000000000000:user/mark", "mark", "dev")

		got := Upsert(mark, list)

		require.Len(t, got, len(list)+1)
		assert.Equal(t, []string{"johndoe", "alice", "bob", "mark"}, usernames(got))
		assert.True(t, got[3].Equal(mark))
	})

	t.Run("replaces existing username in place", func(t *testing.T) {
		t.Parallel()
		list := sampleList()
		updated := User("arn:aws:iam::000000000000:user/alice", "alice", "admins", "viewers")

		got := Upsert(updated, list)

		require.Len(t, got, len(list))
		assert.Equal(t, []string{"johndoe", "alice", "bob"}, usernames(got))
		assert.True(t, got[1].Equal(updated))
		assert.True(t, got[0].Equal(list[0]))
		assert.True(t, got[2].Equal(list[2]))
	})

	t.Run("matches on username only", func(t *testing.T) {
		t.Parallel()
		list := sampleList()
		moved := User("arn:aws:iam::111111111111:user/alice-new", "alice", "viewers")

		got := Upsert(moved, list)

		require.Len(t, got, len(list))
		assert.Equal(t, "arn:aws:iam::111111111111:user/alice-new", got[1].ARN)
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()
		list := sampleList()
		mark := User("arn:aws:iam::000000000000:user/mark", "mark")

		once := Upsert(mark, list)
		twice := Upsert(mark, once)

		assert.Equal(t, once, twice)
	})

	t.Run("does not modify input", func(t *testing.T) {
		t.Parallel()
		list := sampleList()
		before := sampleList()

		_ = Upsert(User("arn:aws:iam::000000000000:user/alice", "alice", "x"), list)
		_ = Upsert(User("arn:aws:iam::000000000000:user/zed", "zed"), list)

		assert.Equal(t, before, list)
	})

	t.Run("into empty list", func(t *testing.T) {
		t.Parallel()
		got := Upsert(User("arn:aws:iam::000000000000:user/mark", "mark"), nil)
		assert.Equal(t, []string{"mark"}, usernames(got))
	})
}

func TestRemove(t *testing.T) {
	t.Parallel()

	t.Run("removes and preserves order", func(t *testing.T) {
		t.Parallel()
		list := sampleList()

		got, warn := Remove(User("", "alice"), list)

		assert.Nil(t, warn)
		assert.Equal(t, []string{"johndoe", "bob"}, usernames(got))
		assert.Len(t, list, 3, "input must not be modified")
	})

	t.Run("second removal warns and leaves list unchanged", func(t *testing.T) {
		t.Parallel()
		id := User("arn:aws:iam::000000000000:user/johndoe", "johndoe")

		first, warn := Remove(id, sampleList())
		require.Nil(t, warn)

		second, warn := Remove(id, first)
		require.NotNil(t, warn)
		assert.Equal(t, ReasonNotFound, warn.Reason)
		assert.Equal(t, "johndoe", warn.Username)
		assert.Equal(t, KindUser, warn.Kind)
		assert.Equal(t, first, second)
	})

	t.Run("last element leaves empty list", func(t *testing.T) {
		t.Parallel()
		list := []Identity{User("arn:aws:iam::000000000000:user/johndoe", "johndoe")}

		got, warn := Remove(list[0], list)

		assert.Nil(t, warn)
		assert.Empty(t, got)
	})

	t.Run("from nil list warns", func(t *testing.T) {
		t.Parallel()
		got, warn := Remove(User("", "ghost"), nil)
		assert.Empty(t, got)
		require.NotNil(t, warn)
		assert.Contains(t, warn.String(), "NotFound")
	})
}
