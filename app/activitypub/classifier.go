package activitypub

// maxAncestorDepth bounds the reply-chain walk. Ancestors past this many hops
// are never inspected, which also caps the cost of classifying cyclic or
// pathological outbox data.
const maxAncestorDepth = 5

// Index maps note ids to the account's own activities. Reply chains are
// resolved against it instead of back-references on the activities themselves.
type Index map[string]Activity

func NewIndex(activities []Activity) Index {
	index := make(Index, len(activities))
	for _, activity := range activities {
		if activity.Object.ID != "" {
			index[activity.Object.ID] = activity
		}
	}
	return index
}

// IsDirectOnly reports whether an activity should surface as a standalone
// post. A root post always does. A reply surfaces only when it replies to the
// account's own post and its ancestor chain, walked through the outbox up to
// maxAncestorDepth hops, never passes through a reply to a third party.
//
// An ancestor missing from the outbox (paginated away, too old) truncates the
// walk there: deeply buried indirect replies can slip through. The walk is
// best-effort by contract, not exhaustive.
func IsDirectOnly(activity Activity, accountID string, index Index) bool {
	if activity.Object.InReplyTo == "" {
		return true
	}

	ownerReply := repliesToOwner(activity, accountID, index)

	indirect := false
	for _, ancestor := range ancestors(activity, index) {
		if ancestor.Object.InReplyTo != "" && !repliesToOwner(ancestor, accountID, index) {
			indirect = true
			break
		}
	}

	return ownerReply && !indirect
}

// repliesToOwner reports whether the activity replies to a post authored by
// the target account. Servers that attach inReplyToAccountId are trusted
// directly; otherwise a reply is owned exactly when its parent resolves inside
// the account's own outbox.
func repliesToOwner(activity Activity, accountID string, index Index) bool {
	if activity.Object.InReplyToAccountID != "" {
		return activity.Object.InReplyToAccountID == accountID
	}

	_, ok := index[activity.Object.InReplyTo]
	return ok
}

func ancestors(activity Activity, index Index) []Activity {
	chain := make([]Activity, 0, maxAncestorDepth)

	current := activity
	for range maxAncestorDepth {
		parent, ok := index[current.Object.InReplyTo]
		if !ok {
			break
		}
		chain = append(chain, parent)
		current = parent
	}

	return chain
}
