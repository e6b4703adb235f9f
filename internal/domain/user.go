package domain

type UserID string
type ChannelID string

type User struct {
	ID          UserID
	DisplayName string
}

// Name returns the display name, falling back to the raw ID.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return string(u.ID)
}

// Message is one inbound chat message as delivered by a gateway.
type Message struct {
	Author   User
	Channel  ChannelID
	Text     string
	Mentions []User
}
