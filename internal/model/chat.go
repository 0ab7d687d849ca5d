package model

import "time"

// ChatMessage is one line of the public marketplace chat.  The display
// name is snapshotted from the sender's profile at post time so that
// the chat log renders without joining back to profiles.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – sender.
//  DisplayName – sender's name at the time of posting.
//  Body        – message text.
//  CreatedAt   – creation timestamp.
type ChatMessage struct {
    ID          uint64    // chat_messages.id
    UserID      uint64    // chat_messages.user_id
    DisplayName string    // chat_messages.display_name
    Body        string    // chat_messages.body
    CreatedAt   time.Time // chat_messages.created_at
}
