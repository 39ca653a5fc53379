package models

import "time"

const CodeTypeRegister = "register"

// VerifyCode expires via a TTL index on CreatedAt (60s).
type VerifyCode struct {
	Value     string    `bson:"value" json:"value"`
	Email     string    `bson:"email" json:"email"`
	Operation string    `bson:"operation" json:"operation"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
