package services

import (
	"context"
	"errors"

	"socialhub/internal/models"
	"socialhub/internal/store"
	"socialhub/wire"
)

var (
	ErrSelfRequest    = errors.New("cannot send a friend request to yourself")
	ErrRequestExists  = errors.New("friend request already pending")
	ErrAlreadyFriends = errors.New("already friends")
	ErrBlocked        = errors.New("blocked")
	ErrNotAddressee   = errors.New("only the addressee can respond")
	ErrNotPending     = errors.New("request is not pending")
	ErrBadAction      = errors.New("action must be accept or reject")
	ErrNotFriends     = errors.New("no accepted friendship with this user")
	ErrFriendshipGone = errors.New("friendship not found")
)

type FriendService struct {
	store store.Store
}

func NewFriendService(st store.Store) *FriendService {
	return &FriendService{store: st}
}

// SendRequest creates a pending edge requester -> addressee. A previously
// rejected edge is replaced so the pair can try again; pending, accepted and
// blocked edges refuse the new request.
func (s *FriendService) SendRequest(ctx context.Context, requesterID, addresseeID int) (*models.Friendship, error) {
	if requesterID == addresseeID {
		return nil, ErrSelfRequest
	}
	if _, err := s.store.GetUserByID(ctx, addresseeID); err != nil {
		return nil, err
	}

	existing, err := s.store.GetFriendshipBetween(ctx, requesterID, addresseeID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case wire.FriendshipPending:
			return nil, ErrRequestExists
		case wire.FriendshipAccepted:
			return nil, ErrAlreadyFriends
		case wire.FriendshipBlocked:
			return nil, ErrBlocked
		case wire.FriendshipRejected:
			if err := s.store.DeleteFriendship(ctx, existing.ID); err != nil {
				return nil, err
			}
		}
	}

	f := &models.Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      wire.FriendshipPending,
	}
	if err := s.store.CreateFriendship(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Respond accepts or rejects a pending request addressed to userID.
func (s *FriendService) Respond(ctx context.Context, userID, friendshipID int, action string) (*models.Friendship, error) {
	if action != "accept" && action != "reject" {
		return nil, ErrBadAction
	}
	f, err := s.store.GetFriendship(ctx, friendshipID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrFriendshipGone
		}
		return nil, err
	}
	if f.AddresseeID != userID {
		return nil, ErrNotAddressee
	}
	if f.Status != wire.FriendshipPending {
		return nil, ErrNotPending
	}

	status := wire.FriendshipAccepted
	if action == "reject" {
		status = wire.FriendshipRejected
	}
	if err := s.store.UpdateFriendshipStatus(ctx, f.ID, status); err != nil {
		return nil, err
	}
	f.Status = status
	return f, nil
}

func (s *FriendService) Pending(ctx context.Context, userID int) ([]wire.FriendRequest, error) {
	rows, err := s.store.GetPendingRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	requests := make([]wire.FriendRequest, 0, len(rows))
	for _, r := range rows {
		requests = append(requests, wire.FriendRequest{
			FriendshipID: r.FriendshipID,
			Requester:    r.Requester.Summary(),
			CreatedAt:    r.CreatedAt,
		})
	}
	return requests, nil
}

func (s *FriendService) List(ctx context.Context, userID, page, limit int, search string) (*wire.FriendList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	rows, total, err := s.store.GetFriends(ctx, userID, page, limit, search)
	if err != nil {
		return nil, err
	}
	friends := make([]wire.Friend, 0, len(rows))
	for _, r := range rows {
		friends = append(friends, wire.Friend{
			ID:           r.Friend.ID,
			FirstName:    r.Friend.FirstName,
			LastName:     r.Friend.LastName,
			Email:        r.Friend.Email,
			Avatar:       r.Friend.Avatar,
			FriendshipID: r.FriendshipID,
		})
	}
	return &wire.FriendList{Data: friends, Total: total, Page: page, Limit: limit}, nil
}

// Status reports the friendship state between userID and otherID.
func (s *FriendService) Status(ctx context.Context, userID, otherID int) (*wire.FriendshipStatus, error) {
	f, err := s.store.GetFriendshipBetween(ctx, userID, otherID)
	if errors.Is(err, store.ErrNotFound) {
		return &wire.FriendshipStatus{Status: wire.FriendshipNone}, nil
	}
	if err != nil {
		return nil, err
	}
	return &wire.FriendshipStatus{
		Status:       f.Status,
		FriendshipID: f.ID,
		Requester:    f.RequesterID == userID,
	}, nil
}

// Unfriend removes the accepted edge between userID and friendID and returns
// it so the caller can notify the other side.
func (s *FriendService) Unfriend(ctx context.Context, userID, friendID int) (*models.Friendship, error) {
	f, err := s.store.GetFriendshipBetween(ctx, userID, friendID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFriends
		}
		return nil, err
	}
	if f.Status != wire.FriendshipAccepted {
		return nil, ErrNotFriends
	}
	if err := s.store.DeleteFriendship(ctx, f.ID); err != nil {
		return nil, err
	}
	return f, nil
}

// Block marks the edge between userID and targetID as blocked, creating it
// if the two users had none.
func (s *FriendService) Block(ctx context.Context, userID, targetID int) (*models.Friendship, error) {
	if userID == targetID {
		return nil, ErrSelfRequest
	}
	f, err := s.store.GetFriendshipBetween(ctx, userID, targetID)
	if errors.Is(err, store.ErrNotFound) {
		f = &models.Friendship{
			RequesterID: userID,
			AddresseeID: targetID,
			Status:      wire.FriendshipBlocked,
		}
		if err := s.store.CreateFriendship(ctx, f); err != nil {
			return nil, err
		}
		return f, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateFriendshipStatus(ctx, f.ID, wire.FriendshipBlocked); err != nil {
		return nil, err
	}
	f.Status = wire.FriendshipBlocked
	return f, nil
}

// Suggested returns users with no edge to userID, as request candidates.
func (s *FriendService) Suggested(ctx context.Context, userID int) ([]wire.UserSummary, error) {
	users, err := s.store.GetSuggestedUsers(ctx, userID, 10)
	if err != nil {
		return nil, err
	}
	out := make([]wire.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out, nil
}
