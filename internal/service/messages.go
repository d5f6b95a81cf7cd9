package service

import "github.com/mmynk/friendshipbank/internal/models"

// Request and response messages for LedgerService. Field names are the
// JSON wire format.
//
// Mutating requests take an optional expectedVersion: when non-zero the
// call fails with CodeAborted if the friend list changed since that version
// was read.

type GetProfileRequest struct{}

type GetProfileResponse struct {
	UserName string `json:"userName"`
}

type SetUserNameRequest struct {
	UserName string `json:"userName"`
}

type SetUserNameResponse struct {
	UserName string `json:"userName"`
}

type SignOutRequest struct{}

type SignOutResponse struct{}

type ListFriendsRequest struct{}

type ListFriendsResponse struct {
	UserName string          `json:"userName"`
	Friends  []models.Friend `json:"friends"`
	Version  int64           `json:"version"`
}

type GetFriendRequest struct {
	FriendID string `json:"friendId"`
}

type GetFriendResponse struct {
	Friend  models.Friend `json:"friend"`
	Version int64         `json:"version"`
}

// ExpectedVersion on a write request is the friend-list version the client
// last read. Leaving it out skips the staleness check; 0 asserts that no
// friend list has been saved yet.
type AddFriendRequest struct {
	Name            string `json:"name"`
	ExpectedVersion *int64 `json:"expectedVersion,omitempty"`
}

type AddFriendResponse struct {
	Friend models.Friend `json:"friend"`
}

// ClearFriendsRequest must carry confirmed=true; the client is expected to
// have shown the confirmation prompt.
type ClearFriendsRequest struct {
	Confirmed       bool   `json:"confirmed"`
	ExpectedVersion *int64 `json:"expectedVersion,omitempty"`
}

type ClearFriendsResponse struct{}

// RecordTransferRequest is a manual entry. Amount is the text the user
// typed; Direction is "gave" or "received".
type RecordTransferRequest struct {
	FriendID        string `json:"friendId"`
	Direction       string `json:"direction"`
	Amount          string `json:"amount"`
	Description     string `json:"description,omitempty"`
	ExpectedVersion *int64 `json:"expectedVersion,omitempty"`
}

type RecordActRequest struct {
	FriendID        string `json:"friendId"`
	ActID           string `json:"actId"`
	ExpectedVersion *int64 `json:"expectedVersion,omitempty"`
}

type RecordCustomActRequest struct {
	FriendID        string `json:"friendId"`
	Description     string `json:"description"`
	Points          string `json:"points"`
	ExpectedVersion *int64 `json:"expectedVersion,omitempty"`
}

// RecordTransactionResponse is returned by every Record* procedure.
type RecordTransactionResponse struct {
	Transaction models.Transaction `json:"transaction"`
}

type ListActsRequest struct{}

type ListActsResponse struct {
	Acts []models.Act `json:"acts"`
}
