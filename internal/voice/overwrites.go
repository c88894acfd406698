// internal/voice/overwrites.go
package voice

// Permission bits used by the keeper, matching the platform's permission
// flags.
const (
	PermStream             int64 = 1 << 9
	PermViewChannel        int64 = 1 << 10
	PermReadMessageHistory int64 = 1 << 16
	PermConnect            int64 = 1 << 20
	PermSpeak              int64 = 1 << 21
	PermMuteMembers        int64 = 1 << 22
	PermDeafenMembers      int64 = 1 << 23
	PermMoveMembers        int64 = 1 << 24
)

// ownerPerms is the full moderation set granted to a room's owner.
const ownerPerms = PermConnect | PermSpeak | PermStream |
	PermMoveMembers | PermMuteMembers | PermDeafenMembers

// OverwriteKind distinguishes role overwrites from member overwrites.
type OverwriteKind int

const (
	OverwriteRole OverwriteKind = iota
	OverwriteMember
)

// Overwrite is one access-control delta applied to a channel: explicit
// allow and deny bit sets for a single role or member. An overwrite with
// neither bits set means "remove the subject's overwrite entirely", i.e.
// fall back to ambient permissions.
type Overwrite struct {
	SubjectID string
	Kind      OverwriteKind
	Allow     int64
	Deny      int64
}

// MemberResolver reports whether a user id still resolves in the guild.
// Departed members must be silently skipped by the builders, never treated
// as an error. A nil resolver resolves everything.
type MemberResolver func(userID string) bool

func resolves(r MemberResolver, userID string) bool {
	return r == nil || r(userID)
}

// BuildLockedOverwrites computes the overwrite set for a locked room:
// everyone is denied connect, the owner gets full moderation, and each
// resolvable member of allowList may connect (no speak or moderation
// elevation). everyoneID is the guild-wide role (it shares the guild's id).
func BuildLockedOverwrites(everyoneID, ownerID string, allowList []string, resolve MemberResolver) []Overwrite {
	overwrites := []Overwrite{
		{SubjectID: everyoneID, Kind: OverwriteRole, Deny: PermConnect},
	}
	if resolves(resolve, ownerID) {
		overwrites = append(overwrites, Overwrite{
			SubjectID: ownerID,
			Kind:      OverwriteMember,
			Allow:     ownerPerms,
		})
	}
	for _, id := range allowList {
		if resolves(resolve, id) {
			overwrites = append(overwrites, Overwrite{
				SubjectID: id,
				Kind:      OverwriteMember,
				Allow:     PermConnect,
			})
		}
	}
	return overwrites
}

// BuildUnlockedOverwrites computes the overwrite set for an unlocked room:
// everyone inherits ambient permissions (no explicit overwrite), the owner
// keeps full moderation, and each resolvable member of blockList is denied
// connect.
func BuildUnlockedOverwrites(ownerID string, blockList []string, resolve MemberResolver) []Overwrite {
	var overwrites []Overwrite
	if resolves(resolve, ownerID) {
		overwrites = append(overwrites, Overwrite{
			SubjectID: ownerID,
			Kind:      OverwriteMember,
			Allow:     ownerPerms,
		})
	}
	for _, id := range blockList {
		if resolves(resolve, id) {
			overwrites = append(overwrites, Overwrite{
				SubjectID: id,
				Kind:      OverwriteMember,
				Deny:      PermConnect,
			})
		}
	}
	return overwrites
}

// BuildTextHistoryOverwrites restricts the room's companion text surface so
// only the owner may read message history.
func BuildTextHistoryOverwrites(everyoneID, ownerID string) []Overwrite {
	return []Overwrite{
		{SubjectID: everyoneID, Kind: OverwriteRole, Deny: PermReadMessageHistory},
		{SubjectID: ownerID, Kind: OverwriteMember, Allow: PermReadMessageHistory},
	}
}

// TransferTextHistory moves the history grant on succession: the old
// owner's overwrite is cleared (back to ambient, which denies history) and
// the new owner gains it.
func TransferTextHistory(oldOwnerID, newOwnerID string) []Overwrite {
	return []Overwrite{
		{SubjectID: oldOwnerID, Kind: OverwriteMember},
		{SubjectID: newOwnerID, Kind: OverwriteMember, Allow: PermReadMessageHistory},
	}
}
