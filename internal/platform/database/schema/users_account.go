// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns created by the migrations, so
// queries never repeat raw identifiers.
package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table         string
	ID            string
	Username      string
	Email         string
	FullName      string
	Password      string
	AvatarURL     string
	CoverImageURL string
	RefreshToken  string
	CreatedAt     string
	UpdatedAt     string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:         "users.account",
	ID:            "id",
	Username:      "username",
	Email:         "email",
	FullName:      "fullname",
	Password:      "passwordhash",
	AvatarURL:     "avatarurl",
	CoverImageURL: "coverimageurl",
	RefreshToken:  "refreshtoken",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

// PublicColumns returns the columns safe to return to clients, in scan order.
func (t UserAccountTable) PublicColumns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.FullName,
		t.AvatarURL, t.CoverImageURL, t.CreatedAt, t.UpdatedAt,
	}
}

// CredentialColumns appends the password hash to [UserAccountTable.PublicColumns].
func (t UserAccountTable) CredentialColumns() []string {
	return append(t.PublicColumns(), t.Password)
}
