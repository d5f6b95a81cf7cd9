package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// LedgerServiceName is the fully-qualified name of the service.
const LedgerServiceName = "friendshipbank.v1.LedgerService"

// Procedure paths, as used in HTTP routing and Connect headers.
const (
	GetProfileProcedure      = "/" + LedgerServiceName + "/GetProfile"
	SetUserNameProcedure     = "/" + LedgerServiceName + "/SetUserName"
	SignOutProcedure         = "/" + LedgerServiceName + "/SignOut"
	ListFriendsProcedure     = "/" + LedgerServiceName + "/ListFriends"
	GetFriendProcedure       = "/" + LedgerServiceName + "/GetFriend"
	AddFriendProcedure       = "/" + LedgerServiceName + "/AddFriend"
	ClearFriendsProcedure    = "/" + LedgerServiceName + "/ClearFriends"
	RecordTransferProcedure  = "/" + LedgerServiceName + "/RecordTransfer"
	RecordActProcedure       = "/" + LedgerServiceName + "/RecordAct"
	RecordCustomActProcedure = "/" + LedgerServiceName + "/RecordCustomAct"
	ListActsProcedure        = "/" + LedgerServiceName + "/ListActs"
)

// NewLedgerServiceHandler builds an HTTP handler serving every procedure of
// svc. It returns the path prefix to mount the handler on.
func NewLedgerServiceHandler(svc *LedgerService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(GetProfileProcedure, connect.NewUnaryHandler(GetProfileProcedure, svc.GetProfile, opts...))
	mux.Handle(SetUserNameProcedure, connect.NewUnaryHandler(SetUserNameProcedure, svc.SetUserName, opts...))
	mux.Handle(SignOutProcedure, connect.NewUnaryHandler(SignOutProcedure, svc.SignOut, opts...))
	mux.Handle(ListFriendsProcedure, connect.NewUnaryHandler(ListFriendsProcedure, svc.ListFriends, opts...))
	mux.Handle(GetFriendProcedure, connect.NewUnaryHandler(GetFriendProcedure, svc.GetFriend, opts...))
	mux.Handle(AddFriendProcedure, connect.NewUnaryHandler(AddFriendProcedure, svc.AddFriend, opts...))
	mux.Handle(ClearFriendsProcedure, connect.NewUnaryHandler(ClearFriendsProcedure, svc.ClearFriends, opts...))
	mux.Handle(RecordTransferProcedure, connect.NewUnaryHandler(RecordTransferProcedure, svc.RecordTransfer, opts...))
	mux.Handle(RecordActProcedure, connect.NewUnaryHandler(RecordActProcedure, svc.RecordAct, opts...))
	mux.Handle(RecordCustomActProcedure, connect.NewUnaryHandler(RecordCustomActProcedure, svc.RecordCustomAct, opts...))
	mux.Handle(ListActsProcedure, connect.NewUnaryHandler(ListActsProcedure, svc.ListActs, opts...))

	return "/" + LedgerServiceName + "/", mux
}

// LedgerServiceClient is a typed client for LedgerService.
type LedgerServiceClient struct {
	getProfile      *connect.Client[GetProfileRequest, GetProfileResponse]
	setUserName     *connect.Client[SetUserNameRequest, SetUserNameResponse]
	signOut         *connect.Client[SignOutRequest, SignOutResponse]
	listFriends     *connect.Client[ListFriendsRequest, ListFriendsResponse]
	getFriend       *connect.Client[GetFriendRequest, GetFriendResponse]
	addFriend       *connect.Client[AddFriendRequest, AddFriendResponse]
	clearFriends    *connect.Client[ClearFriendsRequest, ClearFriendsResponse]
	recordTransfer  *connect.Client[RecordTransferRequest, RecordTransactionResponse]
	recordAct       *connect.Client[RecordActRequest, RecordTransactionResponse]
	recordCustomAct *connect.Client[RecordCustomActRequest, RecordTransactionResponse]
	listActs        *connect.Client[ListActsRequest, ListActsResponse]
}

// NewLedgerServiceClient creates a client for the server at baseURL
// (e.g. http://localhost:8080).
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)

	return &LedgerServiceClient{
		getProfile:      connect.NewClient[GetProfileRequest, GetProfileResponse](httpClient, baseURL+GetProfileProcedure, opts...),
		setUserName:     connect.NewClient[SetUserNameRequest, SetUserNameResponse](httpClient, baseURL+SetUserNameProcedure, opts...),
		signOut:         connect.NewClient[SignOutRequest, SignOutResponse](httpClient, baseURL+SignOutProcedure, opts...),
		listFriends:     connect.NewClient[ListFriendsRequest, ListFriendsResponse](httpClient, baseURL+ListFriendsProcedure, opts...),
		getFriend:       connect.NewClient[GetFriendRequest, GetFriendResponse](httpClient, baseURL+GetFriendProcedure, opts...),
		addFriend:       connect.NewClient[AddFriendRequest, AddFriendResponse](httpClient, baseURL+AddFriendProcedure, opts...),
		clearFriends:    connect.NewClient[ClearFriendsRequest, ClearFriendsResponse](httpClient, baseURL+ClearFriendsProcedure, opts...),
		recordTransfer:  connect.NewClient[RecordTransferRequest, RecordTransactionResponse](httpClient, baseURL+RecordTransferProcedure, opts...),
		recordAct:       connect.NewClient[RecordActRequest, RecordTransactionResponse](httpClient, baseURL+RecordActProcedure, opts...),
		recordCustomAct: connect.NewClient[RecordCustomActRequest, RecordTransactionResponse](httpClient, baseURL+RecordCustomActProcedure, opts...),
		listActs:        connect.NewClient[ListActsRequest, ListActsResponse](httpClient, baseURL+ListActsProcedure, opts...),
	}
}

func (c *LedgerServiceClient) GetProfile(ctx context.Context, req *connect.Request[GetProfileRequest]) (*connect.Response[GetProfileResponse], error) {
	return c.getProfile.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) SetUserName(ctx context.Context, req *connect.Request[SetUserNameRequest]) (*connect.Response[SetUserNameResponse], error) {
	return c.setUserName.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) SignOut(ctx context.Context, req *connect.Request[SignOutRequest]) (*connect.Response[SignOutResponse], error) {
	return c.signOut.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListFriends(ctx context.Context, req *connect.Request[ListFriendsRequest]) (*connect.Response[ListFriendsResponse], error) {
	return c.listFriends.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetFriend(ctx context.Context, req *connect.Request[GetFriendRequest]) (*connect.Response[GetFriendResponse], error) {
	return c.getFriend.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddFriend(ctx context.Context, req *connect.Request[AddFriendRequest]) (*connect.Response[AddFriendResponse], error) {
	return c.addFriend.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ClearFriends(ctx context.Context, req *connect.Request[ClearFriendsRequest]) (*connect.Response[ClearFriendsResponse], error) {
	return c.clearFriends.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) RecordTransfer(ctx context.Context, req *connect.Request[RecordTransferRequest]) (*connect.Response[RecordTransactionResponse], error) {
	return c.recordTransfer.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) RecordAct(ctx context.Context, req *connect.Request[RecordActRequest]) (*connect.Response[RecordTransactionResponse], error) {
	return c.recordAct.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) RecordCustomAct(ctx context.Context, req *connect.Request[RecordCustomActRequest]) (*connect.Response[RecordTransactionResponse], error) {
	return c.recordCustomAct.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListActs(ctx context.Context, req *connect.Request[ListActsRequest]) (*connect.Response[ListActsResponse], error) {
	return c.listActs.CallUnary(ctx, req)
}
