package model

import "time"

// Contact carries the fields a counterpart needs to reach a poster off
// platform.  It is copied onto postings as a snapshot at submit time
// and re-synced when the profile changes.
type Contact struct {
    DisplayName   string `json:"display_name"`
    Phone         string `json:"phone"`
    Email         string `json:"email"`
    PaymentHandle string `json:"payment_handle"`
}

// Profile is a user's marketplace identity.  It extends the auth-level
// user record with the contact fields shown to matched counterparts.
//
// Fields:
//  UserID    – owning user (primary key, references users.id).
//  Contact   – embedded contact fields.
//  UpdatedAt – last update timestamp.
type Profile struct {
    UserID    uint64    // profiles.user_id
    Contact             // profiles.display_name / phone / email / payment_handle
    UpdatedAt time.Time // profiles.updated_at
}
