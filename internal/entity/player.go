package entity

// User is a human in the player directory.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji,omitempty"`
}

// Bot is an autonomous participant reached over the bot protocol.
type Bot struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Emoji  string `json:"emoji,omitempty"`
	URL    string `json:"url"`
	Colour string `json:"colour,omitempty"`
	Owner  string `json:"owner,omitempty"`
}

type PlayerPublicInfo struct {
	PlayerID string `json:"playerID"`
	Name     string `json:"name"`
	Emoji    string `json:"emoji"`
	Type     string `json:"type"`
}
