// internal/voice/overwrites_test.go
package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findOverwrite(t *testing.T, set []Overwrite, subjectID string) Overwrite {
	t.Helper()
	for _, ow := range set {
		if ow.SubjectID == subjectID {
			return ow
		}
	}
	t.Fatalf("no overwrite for subject %s in %+v", subjectID, set)
	return Overwrite{}
}

func TestBuildLockedOverwrites(t *testing.T) {
	set := BuildLockedOverwrites("guild", "5", []string{"6", "7"}, nil)
	require.Len(t, set, 4)

	everyone := findOverwrite(t, set, "guild")
	assert.Equal(t, OverwriteRole, everyone.Kind)
	assert.EqualValues(t, 0, everyone.Allow)
	assert.Equal(t, PermConnect, everyone.Deny)

	owner := findOverwrite(t, set, "5")
	assert.Equal(t, OverwriteMember, owner.Kind)
	assert.Equal(t, ownerPerms, owner.Allow)
	assert.EqualValues(t, 0, owner.Deny)

	for _, id := range []string{"6", "7"} {
		allowed := findOverwrite(t, set, id)
		assert.Equal(t, PermConnect, allowed.Allow, "allow list gets connect only")
		assert.EqualValues(t, 0, allowed.Deny)
		assert.Zero(t, allowed.Allow&PermMoveMembers)
		assert.Zero(t, allowed.Allow&PermMuteMembers)
		assert.Zero(t, allowed.Allow&PermSpeak)
	}
}

func TestBuildUnlockedOverwrites(t *testing.T) {
	set := BuildUnlockedOverwrites("5", []string{"9"}, nil)
	require.Len(t, set, 2)

	for _, ow := range set {
		assert.NotEqual(t, OverwriteRole, ow.Kind, "everyone inherits ambient permissions when unlocked")
	}

	owner := findOverwrite(t, set, "5")
	assert.Equal(t, ownerPerms, owner.Allow)

	blocked := findOverwrite(t, set, "9")
	assert.Equal(t, PermConnect, blocked.Deny)
	assert.EqualValues(t, 0, blocked.Allow)
}

func TestBuildersSkipUnresolvableMembers(t *testing.T) {
	resolve := func(id string) bool { return id != "gone" }

	set := BuildLockedOverwrites("guild", "5", []string{"gone", "7"}, resolve)
	require.Len(t, set, 3)
	for _, ow := range set {
		assert.NotEqual(t, "gone", ow.SubjectID)
	}

	set = BuildUnlockedOverwrites("gone", []string{"9"}, resolve)
	require.Len(t, set, 1)
	assert.Equal(t, "9", set[0].SubjectID)
}

func TestTextHistoryOverwrites(t *testing.T) {
	set := BuildTextHistoryOverwrites("guild", "owner")
	require.Len(t, set, 2)

	everyone := findOverwrite(t, set, "guild")
	assert.Equal(t, PermReadMessageHistory, everyone.Deny)

	owner := findOverwrite(t, set, "owner")
	assert.Equal(t, PermReadMessageHistory, owner.Allow)
}

func TestTransferTextHistory(t *testing.T) {
	set := TransferTextHistory("old", "new")
	require.Len(t, set, 2)

	cleared := findOverwrite(t, set, "old")
	assert.EqualValues(t, 0, cleared.Allow)
	assert.EqualValues(t, 0, cleared.Deny, "zero overwrite clears the subject back to ambient")

	granted := findOverwrite(t, set, "new")
	assert.Equal(t, PermReadMessageHistory, granted.Allow)
}
