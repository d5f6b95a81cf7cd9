package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/friendshipbank/internal/bank"
	"github.com/mmynk/friendshipbank/internal/ledger"
	"github.com/mmynk/friendshipbank/internal/storage"
)

// LedgerService implements the Connect LedgerService over a Bank.
type LedgerService struct {
	bank *bank.Bank
}

// NewLedgerService creates a new LedgerService backed by b.
func NewLedgerService(b *bank.Bank) *LedgerService {
	return &LedgerService{bank: b}
}

// GetProfile returns the stored display name ("" when none is set).
func (s *LedgerService) GetProfile(ctx context.Context, req *connect.Request[GetProfileRequest]) (*connect.Response[GetProfileResponse], error) {
	name, err := s.bank.Profile(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetProfileResponse{UserName: name}), nil
}

// SetUserName stores the display name.
func (s *LedgerService) SetUserName(ctx context.Context, req *connect.Request[SetUserNameRequest]) (*connect.Response[SetUserNameResponse], error) {
	if err := s.bank.EnterName(ctx, req.Msg.UserName); err != nil {
		return nil, toConnectError(err)
	}
	name, err := s.bank.Profile(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SetUserNameResponse{UserName: name}), nil
}

// SignOut forgets the display name and all friends.
func (s *LedgerService) SignOut(ctx context.Context, req *connect.Request[SignOutRequest]) (*connect.Response[SignOutResponse], error) {
	if err := s.bank.SignOut(ctx); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SignOutResponse{}), nil
}

// ListFriends returns all friends, highest balance first.
func (s *LedgerService) ListFriends(ctx context.Context, req *connect.Request[ListFriendsRequest]) (*connect.Response[ListFriendsResponse], error) {
	home, err := s.bank.Home(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListFriendsResponse{
		UserName: home.UserName,
		Friends:  home.Friends,
		Version:  home.Version,
	}), nil
}

// GetFriend returns one friend with its full history.
func (s *LedgerService) GetFriend(ctx context.Context, req *connect.Request[GetFriendRequest]) (*connect.Response[GetFriendResponse], error) {
	view, err := s.bank.Friend(ctx, req.Msg.FriendID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetFriendResponse{Friend: view.Friend, Version: view.Version}), nil
}

// AddFriend creates a friend with a zero balance.
func (s *LedgerService) AddFriend(ctx context.Context, req *connect.Request[AddFriendRequest]) (*connect.Response[AddFriendResponse], error) {
	slog.Debug("AddFriend request received", "name", req.Msg.Name)

	friend, err := s.bank.AddFriend(ctx, req.Msg.Name, expected(req.Msg.ExpectedVersion))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AddFriendResponse{Friend: friend}), nil
}

// ClearFriends removes every friend when the request is confirmed.
func (s *LedgerService) ClearFriends(ctx context.Context, req *connect.Request[ClearFriendsRequest]) (*connect.Response[ClearFriendsResponse], error) {
	if err := s.bank.ClearFriends(ctx, bank.Confirmed(req.Msg.Confirmed), expected(req.Msg.ExpectedVersion)); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ClearFriendsResponse{}), nil
}

// RecordTransfer records a manual "gave"/"received" entry.
func (s *LedgerService) RecordTransfer(ctx context.Context, req *connect.Request[RecordTransferRequest]) (*connect.Response[RecordTransactionResponse], error) {
	m := req.Msg
	txn, err := s.bank.RecordTransfer(ctx, m.FriendID, m.Direction, m.Amount, m.Description, expected(m.ExpectedVersion))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RecordTransactionResponse{Transaction: txn}), nil
}

// RecordAct records a predefined act.
func (s *LedgerService) RecordAct(ctx context.Context, req *connect.Request[RecordActRequest]) (*connect.Response[RecordTransactionResponse], error) {
	m := req.Msg
	txn, err := s.bank.RecordAct(ctx, m.FriendID, m.ActID, expected(m.ExpectedVersion))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RecordTransactionResponse{Transaction: txn}), nil
}

// RecordCustomAct records a free-form act.
func (s *LedgerService) RecordCustomAct(ctx context.Context, req *connect.Request[RecordCustomActRequest]) (*connect.Response[RecordTransactionResponse], error) {
	m := req.Msg
	txn, err := s.bank.RecordCustomAct(ctx, m.FriendID, m.Description, m.Points, expected(m.ExpectedVersion))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RecordTransactionResponse{Transaction: txn}), nil
}

// expected maps an optional request version onto the bank's check.
func expected(v *int64) int64 {
	if v == nil {
		return storage.AnyVersion
	}
	return *v
}

// ListActs returns the predefined act catalog.
func (s *LedgerService) ListActs(ctx context.Context, req *connect.Request[ListActsRequest]) (*connect.Response[ListActsResponse], error) {
	return connect.NewResponse(&ListActsResponse{Acts: s.bank.Acts()}), nil
}

// toConnectError maps domain errors onto Connect codes.
func toConnectError(err error) error {
	code := connect.CodeInternal
	switch {
	case errors.Is(err, ledger.ErrEmptyName),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrNonPositiveAmount),
		errors.Is(err, ledger.ErrEmptyDescription),
		errors.Is(err, ledger.ErrUnknownDirection):
		code = connect.CodeInvalidArgument
	case errors.Is(err, ledger.ErrFriendNotFound),
		errors.Is(err, ledger.ErrUnknownAct):
		code = connect.CodeNotFound
	case errors.Is(err, bank.ErrNoUser),
		errors.Is(err, bank.ErrNotConfirmed):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, bank.ErrConflict):
		code = connect.CodeAborted
	case errors.Is(err, storage.ErrCorrupt):
		code = connect.CodeDataLoss
	}
	return connect.NewError(code, err)
}
