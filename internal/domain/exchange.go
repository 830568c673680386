package domain

import "time"

// Exchange is one answered question.
type Exchange struct {
	ID        string
	Question  string
	Answer    string
	Model     string
	CreatedAt time.Time
}
