package rest

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"socialhub/wire"
)

// Register creates an account. It does not log in.
func (c *Client) Register(req wire.RegisterRequest) (*wire.UserSummary, error) {
	var user wire.UserSummary
	if err := c.do(http.MethodPost, "/auth/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and installs the resulting session.
func (c *Client) Login(email, password string) (*wire.AuthResponse, error) {
	var auth wire.AuthResponse
	err := c.do(http.MethodPost, "/auth/login", nil, wire.LoginRequest{Email: email, Password: password}, &auth)
	if err != nil {
		return nil, err
	}
	c.SetSession(Session{
		User:         auth.User,
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
	})
	return &auth, nil
}

func (c *Client) ChatHistory(peerID, page, limit int) (*wire.ChatHistory, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var history wire.ChatHistory
	err := c.do(http.MethodGet, fmt.Sprintf("/chat/history/%d", peerID), q, nil, &history)
	if err != nil {
		return nil, err
	}
	return &history, nil
}

// MarkChatRead marks every unread message from peerID as read and returns
// how many rows it touched.
func (c *Client) MarkChatRead(peerID int) (int, error) {
	var res struct {
		Updated int `json:"updated"`
	}
	err := c.do(http.MethodPatch, fmt.Sprintf("/chat/read/%d", peerID), nil, nil, &res)
	return res.Updated, err
}

func (c *Client) Conversations() ([]wire.Conversation, error) {
	var convs []wire.Conversation
	if err := c.do(http.MethodGet, "/chat/conversations", nil, nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (c *Client) SendFriendRequest(addresseeID int) error {
	return c.do(http.MethodPost, "/friend/request", nil, wire.SendFriendRequest{AddresseeID: addresseeID}, nil)
}

func (c *Client) RespondFriendRequest(friendshipID int, action string) error {
	return c.do(http.MethodPost, "/friend/respond", nil,
		wire.RespondFriendRequest{FriendshipID: friendshipID, Action: action}, nil)
}

func (c *Client) PendingRequests() ([]wire.FriendRequest, error) {
	var pending []wire.FriendRequest
	if err := c.do(http.MethodGet, "/friend/pending", nil, nil, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

func (c *Client) Friends(page, limit int, search string) (*wire.FriendList, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if search != "" {
		q.Set("search", search)
	}
	var list wire.FriendList
	if err := c.do(http.MethodGet, "/friend/list", q, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) FriendsOfUser(userID, page, limit int) (*wire.FriendList, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var list wire.FriendList
	if err := c.do(http.MethodGet, fmt.Sprintf("/friend/user/%d", userID), q, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) FriendshipStatus(userID int) (*wire.FriendshipStatus, error) {
	var status wire.FriendshipStatus
	if err := c.do(http.MethodGet, fmt.Sprintf("/friend/status/%d", userID), nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Unfriend(friendID int) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/friend/%d", friendID), nil, nil, nil)
}

func (c *Client) BlockUser(userID int) error {
	return c.do(http.MethodPost, fmt.Sprintf("/friend/block/%d", userID), nil, nil, nil)
}

func (c *Client) SuggestedFriends() ([]wire.UserSummary, error) {
	var users []wire.UserSummary
	if err := c.do(http.MethodGet, "/friend/suggested", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) Notifications(page, perPage int) (*wire.NotificationList, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("items_per_page", strconv.Itoa(perPage))
	var list wire.NotificationList
	if err := c.do(http.MethodGet, "/notifications/", q, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) NotificationUnreadCount() (int, error) {
	var res wire.UnreadCount
	err := c.do(http.MethodGet, "/notifications/unread-count", nil, nil, &res)
	return res.UnreadCount, err
}

func (c *Client) MarkNotificationRead(id int) error {
	return c.do(http.MethodPatch, fmt.Sprintf("/notifications/%d/read", id), nil, nil, nil)
}

func (c *Client) MarkAllNotificationsRead() error {
	return c.do(http.MethodPatch, "/notifications/read-all", nil, nil, nil)
}

func (c *Client) CreatePost(title string) (int, error) {
	var res struct {
		ID int `json:"id"`
	}
	err := c.do(http.MethodPost, "/posts/", nil, wire.CreatePostRequest{Title: title}, &res)
	return res.ID, err
}

func (c *Client) LikePost(postID int) error {
	return c.do(http.MethodPost, fmt.Sprintf("/posts/%d/like", postID), nil, nil, nil)
}

func (c *Client) CommentPost(postID int, text string) error {
	return c.do(http.MethodPost, fmt.Sprintf("/posts/%d/comment", postID), nil, wire.CommentRequest{Text: text}, nil)
}
