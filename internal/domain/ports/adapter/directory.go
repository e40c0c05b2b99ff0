package adapter

import "context"

// DisplayNameLookup resolves member ids to human-readable names for
// rendering and history records. Owned by the chat-platform collaborator.
type DisplayNameLookup interface {
	DisplayName(ctx context.Context, memberID string) (string, error)
}

// WalletLookup resolves a member's wallet address for the outbound
// submission payload. Addresses are opaque pass-through to this core; an
// empty string means the member has not registered one.
type WalletLookup interface {
	Wallet(ctx context.Context, memberID string) (string, error)
}
