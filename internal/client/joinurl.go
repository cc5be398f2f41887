package client

import (
	"context"
	"net/url"
)

// RoomFromURL extracts the room code from a shareable join link of the
// form <base>?room=<id>. The second result is false when the link
// carries no room parameter.
func RoomFromURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	room := u.Query().Get("room")
	return room, room != ""
}

// JoinFromURL joins the room referenced by a page URL, if any. It
// returns false without error when the URL names no room.
func (c *Client) JoinFromURL(ctx context.Context, raw string) (bool, error) {
	roomID, ok := RoomFromURL(raw)
	if !ok {
		return false, nil
	}
	return true, c.JoinRoom(ctx, roomID)
}
