package services

import (
	"context"
	"errors"

	"socialhub/internal/models"
	"socialhub/internal/store"
	"socialhub/wire"
)

var ErrEmptyMessage = errors.New("message must have text or an image")

type ChatService struct {
	store store.Store
}

func NewChatService(st store.Store) *ChatService {
	return &ChatService{store: st}
}

// History returns one page of the conversation with peerID, mapped into the
// wire shape with isFromMe resolved for userID.
func (s *ChatService) History(ctx context.Context, userID, peerID, page, limit int) (*wire.ChatHistory, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	messages, total, err := s.store.GetDirectHistory(ctx, userID, peerID, page, limit)
	if err != nil {
		return nil, err
	}

	// Sender display fields come from the two participants only.
	names := map[int]*models.User{}
	for _, id := range []int{userID, peerID} {
		if u, err := s.store.GetUserByID(ctx, id); err == nil {
			names[id] = u
		}
	}

	data := make([]wire.ChatMessage, 0, len(messages))
	for _, m := range messages {
		cm := wire.ChatMessage{
			ID:        m.ID,
			SenderID:  m.SenderID,
			Content:   m.Content,
			ImageURL:  m.ImageURL,
			IsRead:    m.IsRead,
			IsFromMe:  m.SenderID == userID,
			CreatedAt: m.CreatedAt,
		}
		if u, ok := names[m.SenderID]; ok {
			cm.SenderName = u.Summary().DisplayName()
			cm.SenderAvatar = u.Avatar
		}
		data = append(data, cm)
	}

	totalPages := (total + limit - 1) / limit
	return &wire.ChatHistory{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// MarkRead flags every unread message from peerID to userID and returns the
// number of rows it touched.
func (s *ChatService) MarkRead(ctx context.Context, userID, peerID int) (int, error) {
	return s.store.MarkDirectRead(ctx, userID, peerID)
}

func (s *ChatService) Conversations(ctx context.Context, userID int) ([]wire.Conversation, error) {
	rows, err := s.store.GetConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	convs := make([]wire.Conversation, 0, len(rows))
	for _, r := range rows {
		name := r.PeerFirstName
		if r.PeerLastName != "" {
			if name != "" {
				name += " "
			}
			name += r.PeerLastName
		}
		convs = append(convs, wire.Conversation{
			UserID:          r.PeerID,
			UserName:        name,
			UserAvatar:      r.PeerAvatar,
			LastMessage:     r.LastMessage,
			LastMessageTime: r.LastMessageTime,
			UnreadCount:     r.UnreadCount,
		})
	}
	return convs, nil
}

// SaveDirect persists a direct message and returns it with the assigned ID.
func (s *ChatService) SaveDirect(ctx context.Context, senderID, recipientID int, content, imageURL string) (*models.DirectMessage, error) {
	if content == "" && imageURL == "" {
		return nil, ErrEmptyMessage
	}
	msg := &models.DirectMessage{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		ImageURL:    imageURL,
	}
	if err := s.store.SaveDirectMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// SaveRoom persists a group message.
func (s *ChatService) SaveRoom(ctx context.Context, room string, senderID int, content string) (*models.RoomMessage, error) {
	if content == "" {
		return nil, ErrEmptyMessage
	}
	msg := &models.RoomMessage{
		Room:     room,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.store.SaveRoomMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
